package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/estofaria/os-api/internal/domain"
	"github.com/estofaria/os-api/internal/http/handler"
	"github.com/estofaria/os-api/internal/repository"
	"github.com/estofaria/os-api/internal/service"
	"github.com/estofaria/os-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createStatusHandler(db *gorm.DB) *handler.StatusHandler {
	svc := service.NewStatusConfigService(db, repository.NewStatusConfigRepository(db), zap.NewNop())
	return handler.NewStatusHandler(svc, zap.NewNop())
}

func TestStatusHandler_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Estofados Alpha")
	h := createStatusHandler(db)

	t.Run("appended after existing statuses", func(t *testing.T) {
		body := domain.CreateStatusRequest{Nome: "Aguardando Peças", Cor: "#6b7280"}
		rr := httptest.NewRecorder()
		h.Create(rr, newRequest(t, tn.Context(), http.MethodPost, "/api/v1/status", body, nil))

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		got := decode[domain.StatusConfigDTO](t, rr)
		assert.Equal(t, 4, got.Ordem)
		assert.True(t, got.Ativo)
		assert.NotEmpty(t, rr.Header().Get("Location"))
	})

	t.Run("second cancellation status", func(t *testing.T) {
		body := domain.CreateStatusRequest{Nome: "Desistência", Cor: "#000000", IsCancelamento: true}
		rr := httptest.NewRecorder()
		h.Create(rr, newRequest(t, tn.Context(), http.MethodPost, "/api/v1/status", body, nil))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("invalid color", func(t *testing.T) {
		body := domain.CreateStatusRequest{Nome: "Azul", Cor: "blue"}
		rr := httptest.NewRecorder()
		h.Create(rr, newRequest(t, tn.Context(), http.MethodPost, "/api/v1/status", body, nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		problem := decodeProblem(t, rr)
		require.Contains(t, problem.Errors, "cor")
		assert.Equal(t, domain.GetValidationMessage("hexcolor"), problem.Errors["cor"])
	})
}

func TestStatusHandler_Reorder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Estofados Alpha")
	h := createStatusHandler(db)

	body := domain.ReorderStatusesRequest{IDs: []uuid.UUID{tn.EmProducao.ID, tn.Criada.ID}}
	rr := httptest.NewRecorder()
	h.Reorder(rr, newRequest(t, tn.Context(), http.MethodPut, "/api/v1/status/reorder", body, nil))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[[]domain.StatusConfigDTO](t, rr)
	require.Len(t, got, 4)
	assert.Equal(t, tn.EmProducao.ID, got[0].ID)
	assert.Equal(t, tn.Criada.ID, got[1].ID)

	t.Run("foreign status", func(t *testing.T) {
		other := testutil.CreateTenant(t, db, "Estofados Beta")
		body := domain.ReorderStatusesRequest{IDs: []uuid.UUID{other.Criada.ID}}
		rr := httptest.NewRecorder()
		h.Reorder(rr, newRequest(t, tn.Context(), http.MethodPut, "/api/v1/status/reorder", body, nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		body := domain.ReorderStatusesRequest{IDs: []uuid.UUID{tn.Criada.ID, tn.Criada.ID}}
		rr := httptest.NewRecorder()
		h.Reorder(rr, newRequest(t, tn.Context(), http.MethodPut, "/api/v1/status/reorder", body, nil))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}

func TestStatusHandler_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Estofados Alpha")
	h := createStatusHandler(db)

	cliente := testutil.CreateCliente(t, db, tn, "Maria Souza", "529.982.247-25")
	testutil.CreateOrdem(t, db, tn, cliente, tn.Criada, "OS-0001", "10.00")

	del := func(id uuid.UUID) int {
		rr := httptest.NewRecorder()
		h.Delete(rr, newRequest(t, tn.Context(), http.MethodDelete, "/", nil, map[string]string{"id": id.String()}))
		return rr.Code
	}

	assert.Equal(t, http.StatusConflict, del(tn.Criada.ID))
	assert.Equal(t, http.StatusNoContent, del(tn.EmProducao.ID))
	assert.Equal(t, http.StatusNotFound, del(tn.EmProducao.ID))
}

func TestStatusHandler_SeedDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tn := testutil.CreateTenant(t, db, "Estofados Alpha")
	h := createStatusHandler(db)

	// the tenant already has a flow, seeding leaves it alone
	rr := httptest.NewRecorder()
	h.SeedDefaults(rr, newRequest(t, tn.Context(), http.MethodPost, "/api/v1/status/seed", nil, nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	var count int64
	require.NoError(t, db.Model(&domain.StatusConfig{}).Where("company_id = ?", tn.Company.ID).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}
