package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/service"
	"github.com/talkincode/toughpos/internal/webserver"
)

// productPayload arrives as multipart form fields, so numbers are validated
// as digit strings before conversion.
type productPayload struct {
	Barcode     string `json:"barcode" form:"barcode" validate:"required,max=64"`
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required"`
	BuyPrice    string `json:"buy_price" form:"buy_price" validate:"required,number"`
	SellPrice   string `json:"sell_price" form:"sell_price" validate:"required,number"`
	Stock       string `json:"stock" form:"stock" validate:"required,number"`
	CategoryID  string `json:"category_id" form:"category_id" validate:"required,number"`
}

func (p productPayload) input() service.ProductInput {
	return service.ProductInput{
		Barcode:     p.Barcode,
		Title:       p.Title,
		Description: p.Description,
		BuyPrice:    cast.ToInt64(p.BuyPrice),
		SellPrice:   cast.ToInt64(p.SellPrice),
		Stock:       cast.ToInt64(p.Stock),
		CategoryID:  cast.ToInt64(p.CategoryID),
	}
}

type barcodePayload struct {
	Barcode string `json:"barcode" form:"barcode" validate:"required"`
}

// productRow is one line of the csv export
type productRow struct {
	ID        int64  `csv:"id"`
	Barcode   string `csv:"barcode"`
	Title     string `csv:"title"`
	Category  string `csv:"category"`
	BuyPrice  int64  `csv:"buy_price"`
	SellPrice int64  `csv:"sell_price"`
	Stock     int64  `csv:"stock"`
	Image     string `csv:"image"`
	UpdatedAt string `csv:"updated_at"`
}

// registerProductRoutes registers product CRUD, lookup and export routes
func (a *API) registerProductRoutes(s *webserver.Server) {
	s.ApiGET("/products", a.listProducts)
	s.ApiGET("/products/:id", a.getProduct)
	s.ApiPOST("/products", a.createProduct)
	s.ApiPUT("/products/:id", a.updateProduct)
	s.ApiDELETE("/products/:id", a.deleteProduct)
	s.ApiGET("/products-by-category/:id", a.productsByCategory)
	s.ApiPOST("/products-by-barcode", a.productByBarcode)
	s.ApiGET("/products-export", a.exportProducts)
}

func (a *API) listProducts(c echo.Context) error {
	page, err := a.products.List(c.Request().Context(), parsePagination(c))
	if err != nil {
		return handleServiceError(c, err, "Product")
	}
	return paged(c, "Products retrieved", page)
}

func (a *API) getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product ID", nil)
	}
	product, err := a.products.Get(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "Product")
	}
	return ok(c, "Product retrieved", product)
}

func (a *API) createProduct(c echo.Context) error {
	var payload productPayload
	input, img, done, err := a.readProduct(c, 0, &payload)
	if done {
		return err
	}
	product, err := a.products.Create(c.Request().Context(), input, img)
	if err != nil {
		return handleServiceError(c, err, "Product")
	}
	return created(c, "Product created", product)
}

func (a *API) updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product ID", nil)
	}
	var payload productPayload
	input, img, done, err := a.readProduct(c, id, &payload)
	if done {
		return err
	}
	product, err := a.products.Update(c.Request().Context(), id, input, img)
	if err != nil {
		return handleServiceError(c, err, "Product")
	}
	return ok(c, "Product updated", product)
}

// readProduct mirrors readCategory for products.
func (a *API) readProduct(c echo.Context, id int64, payload *productPayload) (in service.ProductInput, img *service.Upload, done bool, err error) {
	if id > 0 {
		if _, err := a.products.Get(c.Request().Context(), id); err != nil {
			return in, nil, true, handleServiceError(c, err, "Product")
		}
	}
	errs, err := bindAndValidate(c, payload)
	if err != nil {
		return in, nil, true, handleBindError(c, err)
	}
	img, err = readImage(c)
	if err != nil {
		return in, nil, true, handleBindError(c, err)
	}
	in = payload.input()
	domainErrs, err := a.products.Validate(c.Request().Context(), id, in, img)
	if err != nil {
		return in, nil, true, handleServiceError(c, err, "Product")
	}
	if errs = append(errs, domainErrs...); len(errs) > 0 {
		return in, nil, true, handleValidationError(c, errs)
	}
	return in, img, false, nil
}

func (a *API) deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product ID", nil)
	}
	if err := a.products.Delete(c.Request().Context(), id); err != nil {
		return handleServiceError(c, err, "Product")
	}
	return ok(c, "Product deleted", map[string]interface{}{"id": id})
}

func (a *API) productsByCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid category ID", nil)
	}
	products, err := a.products.ByCategory(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "Product")
	}
	return ok(c, "Products retrieved", products)
}

func (a *API) productByBarcode(c echo.Context) error {
	var payload barcodePayload
	errs, err := bindAndValidate(c, &payload)
	if err != nil {
		return handleBindError(c, err)
	}
	if len(errs) > 0 {
		return handleValidationError(c, errs)
	}
	product, err := a.products.ByBarcode(c.Request().Context(), strings.TrimSpace(payload.Barcode))
	if err != nil {
		return handleServiceError(c, err, "Product")
	}
	return ok(c, "Product retrieved", product)
}

func (a *API) exportProducts(c echo.Context) error {
	products, err := a.products.All(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "Product")
	}
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, newProductRow(p))
	}
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return handleServiceError(c, err, "Product")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

func newProductRow(p domain.Product) productRow {
	row := productRow{
		ID:        p.ID,
		Barcode:   p.Barcode,
		Title:     p.Title,
		BuyPrice:  p.BuyPrice,
		SellPrice: p.SellPrice,
		Stock:     p.Stock,
		Image:     p.Image,
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Category != nil {
		row.Category = p.Category.Name
	}
	return row
}
