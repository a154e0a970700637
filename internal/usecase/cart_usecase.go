package usecase

import (
	"context"
	"errors"
	"net/http"

	"shopapp/internal/domain/model"
	repo "shopapp/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// 在庫チェックは楽観的（読み取り時点の値）で、予約やロックはしない。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	itemRepo    repo.CartItemRepository
	productRepo repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	itemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		itemRepo:    itemRepo,
		productRepo: productRepo,
	}
}

// 明細に埋め込む商品サマリ（現在値。スナップショットとは別）
type CartProductDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Image    string `json:"image"`
	Stock    int64  `json:"stock"`
	Category string `json:"category"`
}

// price/name/image は追加時点のスナップショットを返す
type CartItemDTO struct {
	ID        int64          `json:"id"`
	ProductID int64          `json:"product_id"`
	Quantity  int64          `json:"quantity"`
	Price     int64          `json:"price"`
	Name      string         `json:"name"`
	Image     string         `json:"image"`
	Product   CartProductDTO `json:"product"`
}

type CartDTO struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	Items       []CartItemDTO `json:"items"`
	TotalAmount int64         `json:"totalAmount"`
	TotalItems  int64         `json:"totalItems"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

// カート取得（無ければ空を作って返す）
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartDTO, error) {
	if userID <= 0 {
		return CartDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartDTO(ctx, cart)
}

// カートに追加（同一商品は数量加算、スナップショットは追加時点のまま）
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartDTO, error) {
	if userID <= 0 {
		return CartDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartDTO{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 1 {
		return CartDTO{}, NewHTTPError(http.StatusBadRequest, "Quantity must be at least 1")
	}

	// 商品チェック
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartDTO{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.Stock < in.Quantity {
		return CartDTO{}, NewHTTPError(http.StatusBadRequest, "Not enough stock available")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.itemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var existing *model.CartItem
	for i := range items {
		if items[i].ProductID == in.ProductID {
			existing = &items[i]
			break
		}
	}

	if existing != nil {
		// 合算後の数量で在庫チェックする
		newQty := existing.Quantity + in.Quantity
		if p.Stock < newQty {
			return CartDTO{}, NewHTTPError(http.StatusBadRequest, "Not enough stock available")
		}

		if err := u.itemRepo.UpdateQuantity(ctx, existing.ID, newQty); err != nil {
			return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	} else {
		//新しい明細。価格・名前・画像はこの時点の値をスナップショット
		item := model.CartItem{
			CartID:        cart.ID,
			ProductID:     p.ID,
			Quantity:      in.Quantity,
			PriceSnapshot: p.Price,
			NameSnapshot:  p.Name,
			ImageSnapshot: p.Image,
		}
		if err := u.itemRepo.Create(ctx, &item); err != nil {
			return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	if err := u.recomputeTotals(ctx, cart.ID); err != nil {
		return CartDTO{}, err
	}

	return u.reloadCartDTO(ctx, userID)
}

// 数量変更（所有チェック＋在庫チェック）
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, cartItemID int64, qty int64) (CartDTO, error) {
	if userID <= 0 {
		return CartDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if qty < 1 {
		return CartDTO{}, NewHTTPError(http.StatusBadRequest, "Quantity must be at least 1")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartDTO{}, NewHTTPError(http.StatusNotFound, "Cart not found")
	}
	if err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item, err := u.itemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartDTO{}, NewHTTPError(http.StatusNotFound, "Cart item not found")
	}
	if err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 他人のカートの明細は見せない
	if item.CartID != cart.ID {
		return CartDTO{}, NewHTTPError(http.StatusNotFound, "Cart item not found")
	}

	//商品の現在在庫でチェック
	p, err := u.productRepo.FindByID(ctx, item.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartDTO{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.Stock < qty {
		return CartDTO{}, NewHTTPError(http.StatusBadRequest, "Not enough stock available")
	}

	if err := u.itemRepo.UpdateQuantity(ctx, cartItemID, qty); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartDTO{}, NewHTTPError(http.StatusNotFound, "Cart item not found")
		}
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.recomputeTotals(ctx, cart.ID); err != nil {
		return CartDTO{}, err
	}

	return u.reloadCartDTO(ctx, userID)
}

// 明細削除（明細が既に無ければno-opで成功）
func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID int64, cartItemID int64) (CartDTO, error) {
	if userID <= 0 {
		return CartDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartDTO{}, NewHTTPError(http.StatusNotFound, "Cart not found")
	}
	if err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item, err := u.itemRepo.FindByID(ctx, cartItemID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 自分のカートの明細だけ削除。無ければ何もしない
	if err == nil && item.CartID == cart.ID {
		if err := u.itemRepo.DeleteByID(ctx, cartItemID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	if err := u.recomputeTotals(ctx, cart.ID); err != nil {
		return CartDTO{}, err
	}

	return u.reloadCartDTO(ctx, userID)
}

// 空にする（カート自体は残る）
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartDTO, error) {
	if userID <= 0 {
		return CartDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartDTO{}, NewHTTPError(http.StatusNotFound, "Cart not found")
	}
	if err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.reloadCartDTO(ctx, userID)
}

// totalItems = Σ quantity / totalAmount = Σ price*quantity を永続化のたびに作り直す
func (u *CartUsecase) recomputeTotals(ctx context.Context, cartID int64) error {
	items, err := u.itemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var amount int64 = 0
	var count int64 = 0
	for _, it := range items {
		amount += it.PriceSnapshot * it.Quantity
		count += it.Quantity
	}

	if err := u.cartRepo.UpdateTotals(ctx, cartID, amount, count); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 更新後のカートを取り直してDTOにする
func (u *CartUsecase) reloadCartDTO(ctx context.Context, userID int64) (CartDTO, error) {
	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartDTO(ctx, cart)
}

// 明細をまとめてCartDTOを作る。
// 商品の現在値は読み取り側で結合する。商品が消えていてもスナップショットは残す
func (u *CartUsecase) buildCartDTO(ctx context.Context, cart model.Cart) (CartDTO, error) {
	items, err := u.itemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	dtoItems := make([]CartItemDTO, 0, len(items))
	for _, it := range items {
		var pd CartProductDTO
		if p, err := u.productRepo.FindByID(ctx, it.ProductID); err == nil {
			pd = CartProductDTO{
				ID:       p.ID,
				Name:     p.Name,
				Price:    p.Price,
				Image:    p.Image,
				Stock:    p.Stock,
				Category: p.Category,
			}
		}

		dtoItems = append(dtoItems, CartItemDTO{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.PriceSnapshot,
			Name:      it.NameSnapshot,
			Image:     it.ImageSnapshot,
			Product:   pd,
		})
	}

	return CartDTO{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       dtoItems,
		TotalAmount: cart.TotalAmount,
		TotalItems:  cart.TotalItems,
	}, nil
}
