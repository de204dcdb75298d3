package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/store"
	"github.com/redis/go-redis/v9"
)

// AuthConfig 令牌签发配置
type AuthConfig struct {
	Secret             string
	Issuer             string
	AccessTokenExpire  time.Duration
	RefreshTokenExpire time.Duration
}

// AuthService 本地账号登录与令牌签发
// 账号集合沿用旧版快照的存储形态；redis 可选，未配置时刷新令牌仅验签不校验吊销
type AuthService struct {
	store *store.Store
	rdb   *redis.Client
	cfg   AuthConfig
	now   func() time.Time
}

func NewAuthService(st *store.Store, rdb *redis.Client, cfg AuthConfig) *AuthService {
	if cfg.AccessTokenExpire <= 0 {
		cfg.AccessTokenExpire = 12 * time.Hour
	}
	if cfg.RefreshTokenExpire <= 0 {
		cfg.RefreshTokenExpire = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "decora-erp"
	}
	return &AuthService{store: st, rdb: rdb, cfg: cfg, now: time.Now}
}

// TokenPair 令牌对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验账号口令并签发令牌对
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenPair, *entity.UserAccount, error) {
	account, err := s.store.FindAccountByUsername(req.Username)
	if err != nil || account.Password != req.Password {
		return nil, nil, fmt.Errorf("账号或口令错误")
	}
	pair, err := s.generateTokenPair(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	return pair, account, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, account *entity.UserAccount) (*TokenPair, error) {
	now := s.now()

	accessClaims := jwt.MapClaims{
		"sub":  account.ID,
		"uid":  account.ID,
		"name": account.Username,
		"role": account.Role,
		"iss":  s.cfg.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.AccessTokenExpire).Unix(),
		"jti":  uuid.New().String(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshJti := uuid.New().String()
	refreshClaims := jwt.MapClaims{
		"sub":  account.ID,
		"name": account.Username,
		"type": "refresh",
		"iss":  s.cfg.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.RefreshTokenExpire).Unix(),
		"jti":  refreshJti,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if s.rdb != nil {
		s.rdb.Set(ctx, "token:refresh:"+refreshJti, account.Username, s.cfg.RefreshTokenExpire)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.AccessTokenExpire.Seconds()),
	}, nil
}

// RefreshToken 用刷新令牌换新令牌对
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenPair, error) {
	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims["type"] != "refresh" {
		return nil, fmt.Errorf("invalid token type")
	}

	username, _ := claims["name"].(string)
	if s.rdb != nil {
		jti, _ := claims["jti"].(string)
		stored, err := s.rdb.Get(ctx, "token:refresh:"+jti).Result()
		if err != nil {
			return nil, fmt.Errorf("refresh token expired or invalid")
		}
		username = stored
		s.rdb.Del(ctx, "token:refresh:"+jti)
	}

	account, err := s.store.FindAccountByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("account not found")
	}
	return s.generateTokenPair(ctx, account)
}
