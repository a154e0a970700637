package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"shopapp/internal/domain/model"
	repo "shopapp/internal/repository"
	"shopapp/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newProductUsecase(products *ProductRepoMock, users *UserRepoMock, storage *StorageMock) *usecase.ProductUsecase {
	return usecase.NewProductUsecase(products, users, storage, quietLogger())
}

func assertHTTPError(t *testing.T, err error, status int, contains string) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	assert.Equal(t, status, he.Status)
	assert.Contains(t, he.Message, contains)
}

func TestProductUsecase_List_PaginationMeta(t *testing.T) {
	ctx := context.Background()

	products := new(ProductRepoMock)
	users := new(UserRepoMock)

	q := repo.ProductListQuery{Page: 3, Limit: 3}
	products.On("List", mock.Anything, q).Return([]model.Product{
		{ID: 7, Name: "G", CreatedByID: 1},
	}, int64(7), nil)
	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, Name: "Alice", Email: "a@example.com"}, nil)

	uc := newProductUsecase(products, users, new(StorageMock))

	out, err := uc.List(ctx, usecase.ListProductsInput{Page: 3, Limit: 3})
	assert.NoError(t, err)

	// totalPages = ceil(7/3) = 3
	assert.Equal(t, 3, out.Pagination.TotalPages)
	assert.Equal(t, int64(7), out.Pagination.TotalItems)
	assert.Equal(t, 3, out.Pagination.CurrentPage)
	assert.False(t, out.Pagination.HasNextPage)
	assert.True(t, out.Pagination.HasPrevPage)

	// 作成者サマリが結合されている
	assert.Equal(t, "Alice", out.Items[0].CreatedBy.Name)
}

// totalPagesを超えたページは空リストとhasNextPage=false
func TestProductUsecase_List_PageBeyondEnd(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("List", mock.Anything, mock.Anything).Return([]model.Product{}, int64(7), nil)

	uc := newProductUsecase(products, new(UserRepoMock), new(StorageMock))

	out, err := uc.List(context.Background(), usecase.ListProductsInput{Page: 5, Limit: 3})
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, 3, out.Pagination.TotalPages)
	assert.False(t, out.Pagination.HasNextPage)
}

// 不正なpage/limitはデフォルト（1/3）に戻す
func TestProductUsecase_List_Defaults(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("List", mock.Anything, repo.ProductListQuery{Page: 1, Limit: 3}).
		Return([]model.Product{}, int64(0), nil)

	uc := newProductUsecase(products, new(UserRepoMock), new(StorageMock))

	out, err := uc.List(context.Background(), usecase.ListProductsInput{Page: -2, Limit: 0})
	assert.NoError(t, err)
	assert.Equal(t, 1, out.Pagination.CurrentPage)
	assert.Equal(t, 3, out.Pagination.ItemsPerPage)

	products.AssertExpectations(t)
}

func TestProductUsecase_GetByID_NotFound(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	uc := newProductUsecase(products, new(UserRepoMock), new(StorageMock))

	_, err := uc.GetByID(context.Background(), 99)
	assertHTTPError(t, err, http.StatusNotFound, "Product not found")
}

func TestProductUsecase_Create_Validation(t *testing.T) {
	storage := new(StorageMock)
	uc := newProductUsecase(new(ProductRepoMock), new(UserRepoMock), storage)

	cases := []usecase.CreateProductInput{
		{Name: "", Description: "d", Price: 10, Category: "c", Stock: 1},
		{Name: strings.Repeat("x", 101), Description: "d", Price: 10, Category: "c", Stock: 1},
		{Name: "n", Description: "", Price: 10, Category: "c", Stock: 1},
		{Name: "n", Description: strings.Repeat("x", 1001), Price: 10, Category: "c", Stock: 1},
		{Name: "n", Description: "d", Price: -1, Category: "c", Stock: 1},
		{Name: "n", Description: "d", Price: 1000001, Category: "c", Stock: 1},
		{Name: "n", Description: "d", Price: 10, Category: "", Stock: 1},
		{Name: "n", Description: "d", Price: 10, Category: strings.Repeat("x", 51), Stock: 1},
		{Name: "n", Description: "d", Price: 10, Category: "c", Stock: -1},
	}

	for _, in := range cases {
		_, err := uc.Create(context.Background(), 1, in, nil)
		he, ok := usecase.AsHTTPError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Status)
	}

	// 検証で落ちたらファイルは保存されない
	storage.AssertNotCalled(t, "Store")
}

// DB保存に失敗したらアップロード済みファイルを掃除する
func TestProductUsecase_Create_DBFailure_CleansUpUpload(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("Create", mock.Anything, mock.Anything).Return(model.Product{}, errors.New("db down"))

	storage := new(StorageMock)
	storage.On("Store", mock.Anything, mock.Anything, "p.png", "image/png", int64(3)).
		Return("/uploads/p-xyz.png", nil)
	storage.On("Owns", "/uploads/p-xyz.png").Return(true)
	storage.On("Delete", mock.Anything, "/uploads/p-xyz.png").Return(nil)

	uc := newProductUsecase(products, new(UserRepoMock), storage)

	file := &usecase.UploadedFile{
		Reader:      strings.NewReader("png"),
		Name:        "p.png",
		ContentType: "image/png",
		Size:        3,
	}

	_, err := uc.Create(context.Background(), 1, usecase.CreateProductInput{
		Name: "n", Description: "d", Price: 10, Category: "c", Stock: 1,
	}, file)

	assertHTTPError(t, err, http.StatusBadRequest, "could not create")
	storage.AssertCalled(t, "Delete", mock.Anything, "/uploads/p-xyz.png")
}

func TestProductUsecase_Update_NotOwner_Forbidden(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{
		ID: 5, Name: "n", Description: "d", Price: 10, Category: "c", Stock: 1, CreatedByID: 42,
	}, nil)

	uc := newProductUsecase(products, new(UserRepoMock), new(StorageMock))

	_, err := uc.Update(context.Background(), 5, 7, usecase.UpdateProductInput{
		Name: "n2", Description: "d", Price: 10, Category: "c", Stock: 1,
	}, nil)

	assertHTTPError(t, err, http.StatusForbidden, "Access denied")
	products.AssertNotCalled(t, "Update")
}

// 明示的に空のimageが来たらローカル画像を削除してクリアする
func TestProductUsecase_Update_ClearImage(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{
		ID: 5, Name: "n", Description: "d", Price: 10, Category: "c", Stock: 1,
		CreatedByID: 7, Image: "/uploads/old.png",
	}, nil)
	products.On("Update", mock.Anything, mock.Anything).Return(nil)

	storage := new(StorageMock)
	storage.On("Owns", "/uploads/old.png").Return(true)
	storage.On("Delete", mock.Anything, "/uploads/old.png").Return(nil)

	users := new(UserRepoMock)
	users.On("FindByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Name: "Bob"}, nil)

	uc := newProductUsecase(products, users, storage)

	empty := ""
	out, err := uc.Update(context.Background(), 5, 7, usecase.UpdateProductInput{
		Name: "n", Description: "d", Price: 10, Category: "c", Stock: 1, Image: &empty,
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "", out.Image)
	storage.AssertCalled(t, "Delete", mock.Anything, "/uploads/old.png")
}

// 外部URLの画像は削除対象にしない
func TestProductUsecase_Update_ExternalImageNotDeleted(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{
		ID: 5, Name: "n", Description: "d", Price: 10, Category: "c", Stock: 1,
		CreatedByID: 7, Image: "https://cdn.example.com/pic.png",
	}, nil)
	products.On("Update", mock.Anything, mock.Anything).Return(nil)

	storage := new(StorageMock)
	storage.On("Owns", "https://cdn.example.com/pic.png").Return(false)

	users := new(UserRepoMock)
	users.On("FindByID", mock.Anything, int64(7)).Return(&model.User{ID: 7}, nil)

	uc := newProductUsecase(products, users, storage)

	empty := ""
	_, err := uc.Update(context.Background(), 5, 7, usecase.UpdateProductInput{
		Name: "n", Description: "d", Price: 10, Category: "c", Stock: 1, Image: &empty,
	}, nil)

	assert.NoError(t, err)
	storage.AssertNotCalled(t, "Delete")
}

func TestProductUsecase_Delete_NotOwner_Forbidden(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{ID: 5, CreatedByID: 42}, nil)

	uc := newProductUsecase(products, new(UserRepoMock), new(StorageMock))

	err := uc.Delete(context.Background(), 5, 7)
	assertHTTPError(t, err, http.StatusForbidden, "Access denied")
	products.AssertNotCalled(t, "Delete")
}

func TestProductUsecase_Delete_RemovesLocalImage(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{
		ID: 5, CreatedByID: 7, Image: "/uploads/old.png",
	}, nil)
	products.On("Delete", mock.Anything, int64(5)).Return(nil)

	storage := new(StorageMock)
	storage.On("Owns", "/uploads/old.png").Return(true)
	storage.On("Delete", mock.Anything, "/uploads/old.png").Return(nil)

	uc := newProductUsecase(products, new(UserRepoMock), storage)

	err := uc.Delete(context.Background(), 5, 7)
	assert.NoError(t, err)

	storage.AssertCalled(t, "Delete", mock.Anything, "/uploads/old.png")
	products.AssertCalled(t, "Delete", mock.Anything, int64(5))
}

// 画像の掃除が失敗してもレコード削除は成功として返す
func TestProductUsecase_Delete_CleanupFailureSwallowed(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{
		ID: 5, CreatedByID: 7, Image: "/uploads/old.png",
	}, nil)
	products.On("Delete", mock.Anything, int64(5)).Return(nil)

	storage := new(StorageMock)
	storage.On("Owns", "/uploads/old.png").Return(true)
	storage.On("Delete", mock.Anything, "/uploads/old.png").Return(errors.New("disk error"))

	uc := newProductUsecase(products, new(UserRepoMock), storage)

	err := uc.Delete(context.Background(), 5, 7)
	assert.NoError(t, err)
}
