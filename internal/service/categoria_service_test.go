package service

import (
	"context"
	"strings"
	"testing"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/model"
	"github.com/sergio129/SaludDirecta/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubCategoriaRepo is an in-memory CategoriaRepository.
type stubCategoriaRepo struct {
	categorias map[uuid.UUID]*model.Categoria
}

func newStubCategoriaRepo() *stubCategoriaRepo {
	return &stubCategoriaRepo{categorias: make(map[uuid.UUID]*model.Categoria)}
}

func (r *stubCategoriaRepo) Create(_ context.Context, c *model.Categoria) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Categoria, error) {
	c, ok := r.categorias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCategoriaRepo) FindByNombre(_ context.Context, nombre string) (*model.Categoria, error) {
	for _, c := range r.categorias {
		if strings.EqualFold(c.Nombre, nombre) {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoriaRepo) List(_ context.Context, soloActivas bool) ([]model.Categoria, error) {
	var out []model.Categoria
	for _, c := range r.categorias {
		if soloActivas && !c.Activo {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCategoriaRepo) Update(_ context.Context, c *model.Categoria) error {
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) Desactivar(_ context.Context, id uuid.UUID) error {
	c, ok := r.categorias[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Activo = false
	return nil
}

var _ repository.CategoriaRepository = (*stubCategoriaRepo)(nil)

func ptr(s string) *string { return &s }

func TestCrearCategoria_ConCodigoATC(t *testing.T) {
	svc := NewCategoriaService(newStubCategoriaRepo())

	resp, err := svc.Crear(context.Background(), dto.CrearCategoriaRequest{
		Nombre:    "Analgésicos",
		CodigoATC: ptr("N02"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Activo)
	require.NotNil(t, resp.CodigoATC)
	assert.Equal(t, "N02", *resp.CodigoATC)
}

func TestCrearCategoria_NombreDuplicado(t *testing.T) {
	svc := NewCategoriaService(newStubCategoriaRepo())

	_, err := svc.Crear(context.Background(), dto.CrearCategoriaRequest{Nombre: "Antibióticos"})
	require.NoError(t, err)

	_, err = svc.Crear(context.Background(), dto.CrearCategoriaRequest{Nombre: "antibióticos"})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestActualizarCategoria_CambioDeATC(t *testing.T) {
	repo := newStubCategoriaRepo()
	svc := NewCategoriaService(repo)

	resp, err := svc.Crear(context.Background(), dto.CrearCategoriaRequest{Nombre: "Antigripales"})
	require.NoError(t, err)
	require.Nil(t, resp.CodigoATC)

	resp, err = svc.Actualizar(context.Background(), resp.ID, dto.ActualizarCategoriaRequest{
		CodigoATC: ptr("R05"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.CodigoATC)
	assert.Equal(t, "R05", *resp.CodigoATC)
	assert.Equal(t, "Antigripales", resp.Nombre)
}

func TestActualizarCategoria_NoExiste(t *testing.T) {
	svc := NewCategoriaService(newStubCategoriaRepo())

	_, err := svc.Actualizar(context.Background(), uuid.New(), dto.ActualizarCategoriaRequest{
		Nombre: ptr("Dermatología"),
	})
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestDesactivarCategoria_SaleDelListadoActivo(t *testing.T) {
	repo := newStubCategoriaRepo()
	svc := NewCategoriaService(repo)

	resp, err := svc.Crear(context.Background(), dto.CrearCategoriaRequest{Nombre: "Vitaminas"})
	require.NoError(t, err)

	require.NoError(t, svc.Desactivar(context.Background(), resp.ID))

	activas, err := svc.Listar(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, activas)

	todas, err := svc.Listar(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, todas, 1)
}
