package service

import (
	"context"
	"errors"

	"github.com/sergio129/SaludDirecta/internal/apierror"
	"github.com/sergio129/SaludDirecta/internal/dto"
	"github.com/sergio129/SaludDirecta/internal/model"
	"github.com/sergio129/SaludDirecta/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	Listar(ctx context.Context, soloActivas bool) ([]dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	if existing, err := s.repo.FindByNombre(ctx, req.Nombre); err == nil && existing != nil {
		return nil, apierror.New(apierror.KindConflict, "Ya existe una categoría con ese nombre")
	}
	c := &model.Categoria{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		CodigoATC:   req.CodigoATC,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error creando la categoría: %v", err)
	}
	return categoriaToResponse(c), nil
}

func (s *categoriaService) Listar(ctx context.Context, soloActivas bool) ([]dto.CategoriaResponse, error) {
	categorias, err := s.repo.List(ctx, soloActivas)
	if err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error listando categorías: %v", err)
	}
	resp := make([]dto.CategoriaResponse, 0, len(categorias))
	for i := range categorias {
		resp = append(resp, *categoriaToResponse(&categorias[i]))
	}
	return resp, nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.New(apierror.KindNotFound, "Categoría no encontrada")
		}
		return nil, apierror.Newf(apierror.KindPersistence, "Error consultando la categoría: %v", err)
	}
	if req.Nombre != nil {
		c.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		c.Descripcion = req.Descripcion
	}
	if req.CodigoATC != nil {
		c.CodigoATC = req.CodigoATC
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apierror.Newf(apierror.KindPersistence, "Error actualizando la categoría: %v", err)
	}
	return categoriaToResponse(c), nil
}

func (s *categoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.New(apierror.KindNotFound, "Categoría no encontrada")
		}
		return apierror.Newf(apierror.KindPersistence, "Error consultando la categoría: %v", err)
	}
	return s.repo.Desactivar(ctx, id)
}

func categoriaToResponse(c *model.Categoria) *dto.CategoriaResponse {
	return &dto.CategoriaResponse{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		CodigoATC:   c.CodigoATC,
		Activo:      c.Activo,
		CreatedAt:   c.CreatedAt,
	}
}
