package domain

var Tables = []interface{}{
	&User{},
	&Category{},
	&Product{},
	&Customer{},
}
