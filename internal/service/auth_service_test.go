package service

import (
	"context"
	"testing"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/config"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/model"
	"github.com/sergio129/SaludDirecta/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubUsuarioRepo is an in-memory UsuarioRepository.
type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	out := make([]model.Usuario, 0, len(r.usuarios))
	for _, u := range r.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = activo
	return nil
}

func (r *stubUsuarioRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.usuarios, id)
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

func buildAuthSvc() (AuthService, *stubUsuarioRepo) {
	repo := newStubUsuarioRepo()
	cfg := &config.Config{
		JWTSecret:          "clave-de-prueba-no-usar-en-produccion",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	return NewAuthService(repo, cfg), repo
}

func crearVendedor(t *testing.T, svc AuthService, email, password string) *dto.UsuarioResponse {
	t.Helper()
	u, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Email:    email,
		Nombre:   "Carlos Gómez",
		Password: password,
		Rol:      model.RolVendedor,
	})
	require.NoError(t, err)
	return u
}

func TestLogin_Exitoso(t *testing.T) {
	svc, _ := buildAuthSvc()
	crearVendedor(t, svc, "carlos@saluddirecta.co", "secreto123")

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "carlos@saluddirecta.co",
		Password: "secreto123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, model.RolVendedor, resp.User.Rol)

	// token carries the identity claims the middleware reads
	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("clave-de-prueba-no-usar-en-produccion"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "carlos@saluddirecta.co", claims["email"])
	assert.Equal(t, model.RolVendedor, claims["rol"])
	assert.NotEmpty(t, claims["user_id"])
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	svc, _ := buildAuthSvc()
	crearVendedor(t, svc, "carlos@saluddirecta.co", "secreto123")

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "carlos@saluddirecta.co",
		Password: "otra-clave",
	})
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	svc, _ := buildAuthSvc()

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nadie@saluddirecta.co",
		Password: "loquesea",
	})
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
}

func TestLogin_PendienteDeAprobacion(t *testing.T) {
	svc, _ := buildAuthSvc()

	// self-registered users stay inactive until approved
	u, err := svc.Registro(context.Background(), dto.RegistroRequest{
		Email:    "nueva@saluddirecta.co",
		Nombre:   "Ana Ruiz",
		Password: "clave-larga-8",
	})
	require.NoError(t, err)
	assert.False(t, u.Activo)
	assert.Equal(t, model.RolVendedor, u.Rol)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nueva@saluddirecta.co",
		Password: "clave-larga-8",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
	assert.Contains(t, err.Error(), "pendiente de aprobación")
}

func TestRegistro_EmailDuplicado(t *testing.T) {
	svc, _ := buildAuthSvc()
	crearVendedor(t, svc, "carlos@saluddirecta.co", "secreto123")

	_, err := svc.Registro(context.Background(), dto.RegistroRequest{
		Email:    "carlos@saluddirecta.co",
		Nombre:   "Otro Carlos",
		Password: "cualquiera8",
	})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestAprobarUsuario_HabilitaLogin(t *testing.T) {
	svc, _ := buildAuthSvc()

	u, err := svc.Registro(context.Background(), dto.RegistroRequest{
		Email:    "nueva@saluddirecta.co",
		Nombre:   "Ana Ruiz",
		Password: "clave-larga-8",
	})
	require.NoError(t, err)

	require.NoError(t, svc.AprobarUsuario(context.Background(), uuid.MustParse(u.ID)))

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nueva@saluddirecta.co",
		Password: "clave-larga-8",
	})
	require.NoError(t, err)
	assert.True(t, resp.User.Activo)
}

func TestDesactivarUsuario_BloqueaLogin(t *testing.T) {
	svc, _ := buildAuthSvc()
	u := crearVendedor(t, svc, "carlos@saluddirecta.co", "secreto123")

	require.NoError(t, svc.DesactivarUsuario(context.Background(), uuid.MustParse(u.ID)))

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "carlos@saluddirecta.co",
		Password: "secreto123",
	})
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
}

func TestRefresh_TokenValido(t *testing.T) {
	svc, _ := buildAuthSvc()
	crearVendedor(t, svc, "carlos@saluddirecta.co", "secreto123")

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "carlos@saluddirecta.co",
		Password: "secreto123",
	})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, login.User.ID, resp.User.ID)
}

func TestRefresh_TokenInvalido(t *testing.T) {
	svc, _ := buildAuthSvc()

	_, err := svc.Refresh(context.Background(), "no-es-un-jwt")
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
}

func TestActualizarUsuario_CambioDeRol(t *testing.T) {
	svc, repo := buildAuthSvc()
	u := crearVendedor(t, svc, "carlos@saluddirecta.co", "secreto123")

	rol := model.RolAdministrador
	resp, err := svc.ActualizarUsuario(context.Background(), uuid.MustParse(u.ID), dto.ActualizarUsuarioRequest{Rol: &rol})
	require.NoError(t, err)
	assert.Equal(t, model.RolAdministrador, resp.Rol)
	assert.Equal(t, model.RolAdministrador, repo.usuarios[uuid.MustParse(u.ID)].Rol)
}
