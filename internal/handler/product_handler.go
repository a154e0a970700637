package handler

import (
	"net/http"
	"strconv"

	"shopapp/internal/config"
	"shopapp/internal/middleware"
	"shopapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 失敗は全部この形で返す
type MessageResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, MessageResponse{Message: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, MessageResponse{Message: "internal error"})
}

// ミドルウェアが入れたuser_idを取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	id, ok := v.(int64)
	return id, ok
}

// /products のHTTP
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 一覧・詳細は公開、作成・更新・削除は要認証
func (h *ProductHandler) RegisterRoutes(g *echo.Group, cfg config.Config) {
	g.GET("", h.list)
	g.GET("/:id", h.detail)

	auth := middleware.AuthJWT(cfg)
	g.POST("", h.create, auth)
	g.PUT("/:id", h.update, auth)
	g.DELETE("/:id", h.remove, auth)
}

type productListResponse struct {
	Success    bool                  `json:"success"`
	Data       []usecase.ProductDTO  `json:"data"`
	Pagination usecase.PaginationDTO `json:"pagination"`
}

func (h *ProductHandler) list(c echo.Context) error {
	// page/limit は数値以外が来てもエラーにせずデフォルト（1/3）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			page = p
		}
	}

	limit := 3
	if v := c.QueryParam("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListProductsInput{
		Page:     page,
		Limit:    limit,
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, productListResponse{
		Success:    true,
		Data:       out.Items,
		Pagination: out.Pagination,
	})
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, MessageResponse{Message: "Product not found"})
	}

	p, err := h.uc.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "unauthorized"})
	}

	fields, file, cleanup, err := parseProductForm(c)
	if err != nil {
		return writeError(c, err)
	}
	defer cleanup()

	out, err := h.uc.Create(c.Request().Context(), userID, usecase.CreateProductInput{
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		Category:    fields.Category,
		Stock:       fields.Stock,
		Image:       fields.Image,
	}, file)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, MessageResponse{Message: "Product not found"})
	}

	fields, file, cleanup, err := parseProductForm(c)
	if err != nil {
		return writeError(c, err)
	}
	defer cleanup()

	out, err := h.uc.Update(c.Request().Context(), id, userID, usecase.UpdateProductInput{
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		Category:    fields.Category,
		Stock:       fields.Stock,
		Image:       fields.Image,
	}, file)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) remove(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, MessageResponse{Message: "Product not found"})
	}

	if err := h.uc.Delete(c.Request().Context(), id, userID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}

type productFormFields struct {
	Name        string
	Description string
	Price       int64
	Category    string
	Stock       int64
	Image       *string
}

// multipartフォームから商品フィールドと画像ファイル（1つまで）を取り出す。
// cleanupは開いたファイルを閉じる。エラーでも必ず呼べる
func parseProductForm(c echo.Context) (productFormFields, *usecase.UploadedFile, func(), error) {
	noop := func() {}

	var fields productFormFields
	fields.Name = c.FormValue("name")
	fields.Description = c.FormValue("description")
	fields.Category = c.FormValue("category")

	if v := c.FormValue("price"); v != "" {
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fields, nil, noop, usecase.NewHTTPError(http.StatusBadRequest, "invalid price")
		}
		fields.Price = p
	}
	if v := c.FormValue("stock"); v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fields, nil, noop, usecase.NewHTTPError(http.StatusBadRequest, "invalid stock")
		}
		fields.Stock = s
	}

	form, err := c.MultipartForm()
	if err != nil {
		// multipartでなければファイル無しのフォームとして扱う
		return fields, nil, noop, nil
	}

	// imageフィールドは「未指定」と「空文字」を区別する
	if vals, ok := form.Value["image"]; ok && len(vals) > 0 {
		fields.Image = &vals[0]
	}

	files := form.File["image"]
	if len(files) == 0 {
		return fields, nil, noop, nil
	}
	// ファイルは1リクエスト1つまで
	if len(files) > 1 {
		return fields, nil, noop, usecase.NewHTTPError(http.StatusBadRequest, "Only one file allowed.")
	}

	fh := files[0]
	src, err := fh.Open()
	if err != nil {
		return fields, nil, noop, usecase.NewHTTPError(http.StatusBadRequest, "invalid file")
	}

	file := &usecase.UploadedFile{
		Reader:      src,
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}

	return fields, file, func() { src.Close() }, nil
}
