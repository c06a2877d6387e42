package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patmos-mobile/sync-api/internal/application/dto"
	"github.com/patmos-mobile/sync-api/internal/domain"
	"github.com/patmos-mobile/sync-api/internal/domain/entity"
	"github.com/patmos-mobile/sync-api/internal/domain/repository"
	"github.com/patmos-mobile/sync-api/pkg/jwt"
	"github.com/patmos-mobile/sync-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Mailer entrega el enlace de acceso sin contraseña al invitado.
type Mailer interface {
	SendMagicLink(ctx context.Context, email, firstName, token string) error
}

// SignInListener se ejecuta tras cada inicio de sesión exitoso. Los listeners
// corren de forma síncrona y sus fallos no revierten el inicio de sesión.
type SignInListener func(ctx context.Context, user *entity.User)

// UseCase casos de uso de autenticación: registro, login, retos sin contraseña
// y notificación de eventos de sesión.
type UseCase struct {
	users      repository.UserRepository
	challenges repository.ChallengeRepository
	mailer     Mailer
	jwtCfg     JWTConfig
	log        *logger.Logger

	mu        sync.Mutex
	listeners []SignInListener
}

// NewUseCase construye el caso de uso de auth.
func NewUseCase(users repository.UserRepository, challenges repository.ChallengeRepository, mailer Mailer, jwtCfg JWTConfig, log *logger.Logger) *UseCase {
	return &UseCase{users: users, challenges: challenges, mailer: mailer, jwtCfg: jwtCfg, log: log}
}

// OnSignIn registra un listener de eventos de inicio de sesión.
func (uc *UseCase) OnSignIn(l SignInListener) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.listeners = append(uc.listeners, l)
}

// SignUp crea un principal: hashea el password con bcrypt y persiste.
// Devuelve domain.ErrEmailAlreadyExists si el email ya está registrado.
func (uc *UseCase) SignUp(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// SignIn verifica email/password, genera JWT, dispara los listeners de sesión
// y retorna token + usuario.
func (uc *UseCase) SignIn(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.finishSignIn(ctx, user)
}

// IssueChallenge persiste un reto de acceso de un solo uso con los metadatos
// del invitado y envía el magic link por correo. Cualquier fallo es duro.
func (uc *UseCase) IssueChallenge(ctx context.Context, email, firstName, lastName, sapEmployeeCode string) error {
	token, err := randomToken()
	if err != nil {
		return err
	}
	challenge := &entity.AuthChallenge{
		Token:           token,
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		SAPEmployeeCode: sapEmployeeCode,
		CreatedAt:       time.Now(),
	}
	if err := uc.challenges.Insert(ctx, challenge); err != nil {
		return err
	}
	return uc.mailer.SendMagicLink(ctx, email, firstName, token)
}

// RedeemChallenge consume el reto (un solo uso), crea el principal si es su
// primer acceso y lo firma en sesión, disparando los listeners.
func (uc *UseCase) RedeemChallenge(ctx context.Context, token string) (*dto.LoginResponse, error) {
	challenge, err := uc.challenges.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if challenge == nil || challenge.ConsumedAt != nil {
		return nil, domain.ErrChallengeInvalid
	}
	if err := uc.challenges.MarkConsumed(ctx, token); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByEmail(ctx, challenge.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Primer acceso del invitado: se crea sin password; podrá fijarlo después.
		user = &entity.User{
			ID:        uuid.New().String(),
			Email:     challenge.Email,
			CreatedAt: time.Now(),
		}
		if err := uc.users.Create(ctx, user); err != nil {
			return nil, err
		}
	}
	return uc.finishSignIn(ctx, user)
}

func (uc *UseCase) finishSignIn(ctx context.Context, user *entity.User) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.fireSignIn(ctx, user)
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

func (uc *UseCase) fireSignIn(ctx context.Context, user *entity.User) {
	uc.mu.Lock()
	listeners := make([]SignInListener, len(uc.listeners))
	copy(listeners, uc.listeners)
	uc.mu.Unlock()
	for _, l := range listeners {
		l(ctx, user)
	}
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generar token de reto: %w", err)
	}
	return hex.EncodeToString(b), nil
}
