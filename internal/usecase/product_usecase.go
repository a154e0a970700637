package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shopapp/internal/domain/model"
	repo "shopapp/internal/repository"
	"shopapp/internal/upload"

	"github.com/sirupsen/logrus"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// アップロードされた1ファイル。handlerがmultipartから詰める
type UploadedFile struct {
	Reader      io.Reader
	Name        string
	ContentType string
	Size        int64
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	userRepo    repo.UserRepository
	storage     upload.Storage
	log         *logrus.Logger
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	userRepo repo.UserRepository,
	storage upload.Storage,
	log *logrus.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		userRepo:    userRepo,
		storage:     storage,
		log:         log,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// 作成者のサマリ（idとnameとemailだけ）
type OwnerDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ProductDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Stock       int64     `json:"stock"`
	CreatedBy   OwnerDTO  `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PaginationDTO struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

type ProductListOutput struct {
	Items      []ProductDTO
	Pagination PaginationDTO
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	// 不正な値はエラーにせずデフォルトへ戻す
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 3
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Search:   strings.TrimSpace(in.Search),
		Category: strings.TrimSpace(in.Category),
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	dtos := make([]ProductDTO, 0, len(items))
	owners := map[int64]OwnerDTO{}
	for _, p := range items {
		dtos = append(dtos, u.toProductDTO(ctx, p, owners))
	}

	totalPages := int((total + int64(in.Limit) - 1) / int64(in.Limit))

	return ProductListOutput{
		Items: dtos,
		Pagination: PaginationDTO{
			CurrentPage:  in.Page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: in.Limit,
			HasNextPage:  in.Page < totalPages,
			HasPrevPage:  in.Page > 1,
		},
	}, nil
}

func (u *ProductUsecase) GetByID(ctx context.Context, productID int64) (ProductDTO, error) {
	if productID <= 0 {
		return ProductDTO{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDTO{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return ProductDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.toProductDTO(ctx, p, nil), nil
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       int64
	Category    string
	Stock       int64
	// multipartにimageフィールドが文字列で来た場合（ファイルとは別）
	Image *string
}

func (u *ProductUsecase) Create(ctx context.Context, ownerID int64, in CreateProductInput, file *UploadedFile) (ProductDTO, error) {
	if ownerID <= 0 {
		return ProductDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateProductFields(in.Name, in.Description, in.Price, in.Category, in.Stock); err != nil {
		return ProductDTO{}, err
	}

	// 画像の優先順位: アップロードファイル > imageフィールド > 空
	image := ""
	uploadedRef := ""
	if file != nil {
		ref, err := u.storage.Store(ctx, file.Reader, file.Name, file.ContentType, file.Size)
		if err != nil {
			return ProductDTO{}, uploadError(err)
		}
		uploadedRef = ref
		image = ref
	} else if in.Image != nil {
		image = *in.Image
	}

	now := time.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Image:       image,
		Category:    strings.TrimSpace(in.Category),
		Stock:       in.Stock,
		CreatedByID: ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		// 保存に失敗したらアップロード済みファイルを掃除（ベストエフォート）
		u.cleanupRef(ctx, uploadedRef)
		return ProductDTO{}, NewHTTPError(http.StatusBadRequest, "could not create product")
	}

	return u.toProductDTO(ctx, p, nil), nil
}

type UpdateProductInput struct {
	Name        string
	Description string
	Price       int64
	Category    string
	Stock       int64
	// nilならimageフィールドは未指定（既存値を維持）
	Image *string
}

func (u *ProductUsecase) Update(ctx context.Context, productID int64, ownerID int64, in UpdateProductInput, file *UploadedFile) (ProductDTO, error) {
	if ownerID <= 0 {
		return ProductDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDTO{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return ProductDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 所有者のみ更新できる
	if p.CreatedByID != ownerID {
		return ProductDTO{}, NewHTTPError(http.StatusForbidden, "Access denied. You can only edit your own products.")
	}

	if err := validateProductFields(in.Name, in.Description, in.Price, in.Category, in.Stock); err != nil {
		return ProductDTO{}, err
	}

	oldImage := p.Image
	uploadedRef := ""

	if file != nil {
		// 新しいファイルを受け付けてから、古いローカル画像を削除する
		ref, err := u.storage.Store(ctx, file.Reader, file.Name, file.ContentType, file.Size)
		if err != nil {
			return ProductDTO{}, uploadError(err)
		}
		uploadedRef = ref
		u.cleanupRef(ctx, oldImage)
		p.Image = ref
	} else if in.Image != nil {
		if *in.Image == "" {
			// 明示的に空が来たらローカル画像を削除してクリア
			u.cleanupRef(ctx, oldImage)
		}
		p.Image = *in.Image
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.Category = strings.TrimSpace(in.Category)
	p.Stock = in.Stock

	if err := u.productRepo.Update(ctx, p); err != nil {
		u.cleanupRef(ctx, uploadedRef)
		if errors.Is(err, repo.ErrNotFound) {
			return ProductDTO{}, NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return ProductDTO{}, NewHTTPError(http.StatusBadRequest, "could not update product")
	}

	return u.toProductDTO(ctx, p, nil), nil
}

func (u *ProductUsecase) Delete(ctx context.Context, productID int64, ownerID int64) error {
	if ownerID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if p.CreatedByID != ownerID {
		return NewHTTPError(http.StatusForbidden, "Access denied. You can only delete your own products.")
	}

	// 先にローカル画像を掃除（レコードと非アトミックでよい）
	u.cleanupRef(ctx, p.Image)

	if err := u.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// ローカル管理の参照だけ削除。失敗は呼び出し元のエラーにしない
func (u *ProductUsecase) cleanupRef(ctx context.Context, ref string) {
	if ref == "" || !u.storage.Owns(ref) {
		return
	}
	if err := u.storage.Delete(ctx, ref); err != nil {
		u.log.WithError(err).WithField("ref", ref).Debug("image cleanup failed")
	}
}

// 作成者サマリを読み取り側で結合する
// ownersは同一リクエスト内の重複fetchを避けるキャッシュ（nil可）
func (u *ProductUsecase) toProductDTO(ctx context.Context, p model.Product, owners map[int64]OwnerDTO) ProductDTO {
	var owner OwnerDTO
	cached, ok := owners[p.CreatedByID]
	if ok {
		owner = cached
	} else {
		if user, err := u.userRepo.FindByID(ctx, p.CreatedByID); err == nil && user != nil {
			owner = OwnerDTO{ID: user.ID, Name: user.Name, Email: user.Email}
		}
		if owners != nil {
			owners[p.CreatedByID] = owner
		}
	}

	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Category:    p.Category,
		Stock:       p.Stock,
		CreatedBy:   owner,
		CreatedAt:   p.CreatedAt,
	}
}

func validateProductFields(name string, description string, price int64, category string, stock int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if len(name) > 100 {
		return NewHTTPError(http.StatusBadRequest, "name too long")
	}
	if description == "" {
		return NewHTTPError(http.StatusBadRequest, "description required")
	}
	if len(description) > 1000 {
		return NewHTTPError(http.StatusBadRequest, "description too long")
	}
	if price < 0 || price > 1000000 {
		return NewHTTPError(http.StatusBadRequest, "price must be between 0 and 1000000")
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return NewHTTPError(http.StatusBadRequest, "category required")
	}
	if len(category) > 50 {
		return NewHTTPError(http.StatusBadRequest, "category too long")
	}
	if stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	return nil
}

// Storageのエラーを400/500に振り分ける
func uploadError(err error) error {
	if errors.Is(err, upload.ErrInvalidType) {
		return NewHTTPError(http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, WEBP, GIF, SVG allowed.")
	}
	if errors.Is(err, upload.ErrTooLarge) {
		return NewHTTPError(http.StatusBadRequest, "File too large. Max 5MB.")
	}
	return NewHTTPError(http.StatusInternalServerError, "upload failed")
}
