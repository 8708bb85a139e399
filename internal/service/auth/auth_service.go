package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// JWT Claims
type Claims struct {
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	OrganizationID string `json:"organizationId"`
	jwt.RegisteredClaims
}

type AuthService struct {
	repo      *repository.UserRepository
	orgRepo   *repository.OrganizationRepository
	jwtSecret []byte // JWT签名密钥
}

// NewAuthService 创建认证服务
// jwtSecret: JWT签名密钥（建议64字节或更长）
func NewAuthService(repo *repository.UserRepository, orgRepo *repository.OrganizationRepository, jwtSecret string) *AuthService {
	jwtKey := []byte(jwtSecret)
	if len(jwtKey) == 0 {
		// 如果没有配置，使用默认值（仅用于开发环境）
		jwtKey = []byte("rRdzY4wkean0JDT86fIEY+XEPKa+swZRkAlDUojBhnUQUta4KY/EG3JnnI6mDSrxV")
	}

	return &AuthService{
		repo:      repo,
		orgRepo:   orgRepo,
		jwtSecret: jwtKey,
	}
}

// Register 用户注册
func (s *AuthService) Register(req *model.RegisterRequest, orgID string) (*model.User, error) {
	// 检查用户名是否已存在
	if _, err := s.repo.FindUserByUsername(req.Username); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("检查用户名失败: %w", err)
		}
	} else {
		return nil, errors.New("用户名已存在")
	}

	if req.OrganizationID != "" {
		orgID = req.OrganizationID
	}
	if _, err := s.orgRepo.FindByID(orgID); err != nil {
		return nil, errors.New("组织不存在")
	}

	role := req.Role
	switch role {
	case model.RoleAdmin, model.RoleManager, model.RoleAgent:
	case "":
		role = model.RoleAgent
	default:
		return nil, fmt.Errorf("无效的角色: %s", role)
	}

	// 加密密码
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := &model.User{
		ID:             uuid.New().String(),
		Username:       req.Username,
		Password:       string(hashed),
		Email:          req.Email,
		FullName:       req.FullName,
		Role:           role,
		Status:         "active",
		OrganizationID: orgID,
	}
	if err := s.repo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	return user, nil
}

// Login 用户登录，成功后返回JWT和用户信息
func (s *AuthService) Login(req *model.LoginRequest, loginIP, userAgent string) (*model.LoginResponse, error) {
	user, err := s.repo.FindUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("用户名或密码错误")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("用户名或密码错误")
	}

	if user.Status != "active" {
		return nil, errors.New("账号已被禁用，请联系管理员")
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("生成Token失败: %w", err)
	}

	// 记录登录信息，失败不影响登录结果
	_ = s.repo.UpdateLastLogin(user.ID, loginIP)
	_ = s.repo.CreateLoginRecord(&model.PlatformLoginRecord{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		LoginIP:   loginIP,
		UserAgent: userAgent,
		LoginTime: time.Now(),
		Status:    "active",
	})

	return &model.LoginResponse{Token: token, User: *user}, nil
}

// ChangePassword 修改密码
func (s *AuthService) ChangePassword(userID string, req *model.ChangePasswordRequest) error {
	user, err := s.repo.FindUserByID(userID)
	if err != nil {
		return errors.New("用户不存在")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return errors.New("旧密码错误")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}

	user.Password = string(hashed)
	return s.repo.UpdateUser(user)
}

// GenerateToken 生成 JWT Token（7天有效期）
func (s *AuthService) GenerateToken(user *model.User) (string, error) {
	expirationTime := time.Now().Add(7 * 24 * time.Hour)

	claims := &Claims{
		UserID:         user.ID,
		Username:       user.Username,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "rendizy",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken 验证 JWT Token
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("无效的Token")
}

// GetUserByID 根据ID获取用户
func (s *AuthService) GetUserByID(userID string) (*model.User, error) {
	return s.repo.FindUserByID(userID)
}

// ListUsers 列出组织下的用户
func (s *AuthService) ListUsers(orgID string) ([]model.User, error) {
	return s.repo.ListByOrganization(orgID)
}

// UpdateUser 更新用户资料
func (s *AuthService) UpdateUser(orgID, userID string, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.FindUserByID(userID)
	if err != nil {
		return nil, errors.New("用户不存在")
	}
	if user.OrganizationID != orgID {
		return nil, errors.New("用户不属于当前组织")
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Role != "" {
		switch req.Role {
		case model.RoleAdmin, model.RoleManager, model.RoleAgent:
			user.Role = req.Role
		default:
			return nil, fmt.Errorf("无效的角色: %s", req.Role)
		}
	}
	if req.Status != "" {
		user.Status = req.Status
	}

	if err := s.repo.UpdateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}
