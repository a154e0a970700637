package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"shopapp/internal/config"
	"shopapp/internal/domain/model"
	"shopapp/internal/mailer"
	"shopapp/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//400 email重複
	ErrEmailTaken = errors.New("email already registered")
	//404 ユーザーが消えている
	ErrUserNotFound = errors.New("user not found")
	//400 リセットトークンが無効か期限切れ
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	//500
	ErrInternal = errors.New("internal error")
)

// セッショントークンの有効期限（30日）
const sessionTokenTTL = 30 * 24 * time.Hour

// リセットトークンの有効期限（1時間）
const resetTokenTTL = time.Hour

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, name string, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

// 公開してよいユーザー情報＋セッショントークン
type AuthResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// /auth/profile の返却（パスワードとリセット系は含めない）
type ProfileDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repository.UserRepository
	validator AuthValidator
	mailer    mailer.ResetMailer
	log       *logrus.Logger
}

func NewAuthUsecase(
	cfg config.Config,
	users repository.UserRepository,
	validator AuthValidator,
	m mailer.ResetMailer,
	log *logrus.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		validator: validator,
		mailer:    m,
		log:       log,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, name string, email string, password string) (*AuthResponse, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, name, email, password); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrInternal
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(pwHash),
	}

	//保存（email重複はunique制約で確実に弾く）
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, ErrInternal
	}

	token, err := u.issueSessionToken(user)
	if err != nil {
		return nil, ErrInternal
	}

	return &AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
	}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, email string, password string) (*AuthResponse, error) {
	if err := u.validator.ValidateLogin(ctx, email, password); err != nil {
		return nil, err
	}

	//ユーザー取得
	// 「emailが無い」と「パスワード違い」を呼び出し元から区別できないようにする
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, ErrUnauthorized
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	token, err := u.issueSessionToken(user)
	if err != nil {
		return nil, ErrInternal
	}

	return &AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
	}, nil
}

func (u *AuthUsecase) Profile(ctx context.Context, userID int64) (*ProfileDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return &ProfileDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

// ForgotPassword はリセットトークンを発行してメール係に渡す。
// emailが存在するかどうかは戻り値から区別できない（列挙攻撃の防止）。
// 開発向けにリセットURLを返す（handlerがdevのときだけ返却に含める）。
func (u *AuthUsecase) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return "", ErrInternal
	}
	if user == nil {
		// 存在しないemailにはDB書き込みもしない
		return "", nil
	}

	plain, digest, err := newResetToken()
	if err != nil {
		return "", ErrInternal
	}

	// ダイジェストと期限をセットで保存（平文はDBに残さない）
	expire := time.Now().Add(resetTokenTTL)
	user.ResetPasswordToken = &digest
	user.ResetPasswordExpire = &expire

	if err := u.users.Update(ctx, user); err != nil {
		return "", ErrInternal
	}

	resetURL := u.cfg.FEURL + "/reset-password/" + plain

	// 送信失敗でもレスポンスは変えない（ベストエフォート）
	if err := u.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		u.log.WithError(err).Warn("reset mail delivery failed")
	}

	return resetURL, nil
}

func (u *AuthUsecase) ResetPassword(ctx context.Context, tokenPlain string, newPassword string) error {
	if tokenPlain == "" {
		return ErrInvalidResetToken
	}
	if len(newPassword) < 6 {
		return ErrValidation
	}

	// 保存時と同じ方法でダイジェストして照合する
	digest := hashResetToken(tokenPlain)

	user, err := u.users.FindByResetTokenDigest(ctx, digest)
	if err != nil {
		return ErrInternal
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	// ダイジェストが一致しても期限切れなら拒否
	if user.ResetPasswordExpire == nil || user.ResetPasswordExpire.Before(time.Now()) {
		return ErrInvalidResetToken
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrInternal
	}

	//新しいパスワードを設定してトークンを消費（両フィールドをクリア）
	user.PasswordHash = string(pwHash)
	user.ResetPasswordToken = nil
	user.ResetPasswordExpire = nil

	if err := u.users.Update(ctx, user); err != nil {
		return ErrInternal
	}

	return nil
}

// jwt発行（sub=ユーザーID、30日）
func (u *AuthUsecase) issueSessionToken(user *model.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(sessionTokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(u.cfg.JWTSecret))
}

// リセットトークン生成（平文 + DB保存用sha256 hexダイジェスト）
func newResetToken() (plain string, digest string, err error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	plain = hex.EncodeToString(b)
	return plain, hashResetToken(plain), nil
}

func hashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
