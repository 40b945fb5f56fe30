package fiscalgw_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/fiscal"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/infrastructure/fiscalgw"
)

func TestHTTPGateway_EnviaSolicitudIdempotente(t *testing.T) {
	var got fiscal.EmissionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emissions", r.URL.Path)
		assert.Equal(t, "s-1", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	gw := fiscalgw.NewHTTPGateway(srv.URL+"/", "tok")
	res, err := gw.RequestEmission(context.Background(), fiscal.EmissionRequest{SaleID: "s-1", OnlyInvoicedStock: true})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "s-1", got.SaleID)
	assert.True(t, got.OnlyInvoicedStock)
}

func TestHTTPGateway_ConflictoEsAceptado(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	res, err := fiscalgw.NewHTTPGateway(srv.URL, "").RequestEmission(context.Background(), fiscal.EmissionRequest{SaleID: "s-2"})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestHTTPGateway_ErrorDelServidor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sefaz fuera de servicio", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := fiscalgw.NewHTTPGateway(srv.URL, "").RequestEmission(context.Background(), fiscal.EmissionRequest{SaleID: "s-3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "sefaz fuera de servicio")
}

func TestLocalGateway_AutorizaEnElActo(t *testing.T) {
	res, err := fiscalgw.LocalGateway{}.RequestEmission(context.Background(), fiscal.EmissionRequest{SaleID: "abc"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, fiscal.OutcomeApproved, res.Outcome)
	assert.Equal(t, "DEV-abc", res.DocumentRef)
}
