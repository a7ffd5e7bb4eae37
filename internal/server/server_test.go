package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"finanzas-backend/internal/config"
	"finanzas-backend/internal/report"
	"finanzas-backend/internal/server"
	"finanzas-backend/internal/store"
	"finanzas-backend/internal/store/storetest"
)

const secret = "0123456789abcdef0123456789abcdef"

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newClient(t *testing.T, st store.Store) *client {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:   secret,
		TokenTTL:    time.Hour,
		CORSOrigins: "*",
		Location:    time.UTC,
	}
	return &client{t: t, app: server.New(cfg, st, zap.NewNop())}
}

func (c *client) send(req *http.Request) *http.Response {
	c.t.Helper()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	return resp
}

func (c *client) do(method, path string, body any) *http.Response {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

type obj = map[string]any

func (c *client) register(initial string) string {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/api/accounts", obj{"firstName": "Lucía", "lastName": "Pérez", "initialBalance": initial})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)
	body := decode[obj](c.t, resp)
	c.token = body["token"].(string)
	return body["account"].(obj)["uid"].(string)
}

func TestAPI_LedgerFlow(t *testing.T) {
	c := newClient(t, store.NewMemoryStore())
	c.register("100")

	resp := c.do(http.MethodPost, "/api/movements", obj{"type": "ingreso", "amount": "50", "description": "sale"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode[obj](t, resp)
	require.Equal(t, "150", body["balance"])
	require.Equal(t, "sale", body["movement"].(obj)["description"])

	resp = c.do(http.MethodPost, "/api/movements", obj{"type": "egreso", "amount": 30})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "120", decode[obj](t, resp)["balance"])

	balance := decode[obj](t, c.do(http.MethodGet, "/api/balance", nil))
	require.Equal(t, "120", balance["balance"])
	require.Equal(t, "100", balance["initialBalance"])
	require.EqualValues(t, 2, balance["movementCount"])

	oldest := decode[[]obj](t, c.do(http.MethodGet, "/api/movements?order=oldest", nil))
	require.Len(t, oldest, 2)
	require.Equal(t, "ingreso", oldest[0]["type"])
	newest := decode[[]obj](t, c.do(http.MethodGet, "/api/movements", nil))
	require.Equal(t, "egreso", newest[0]["type"])

	inverted := decode[[]obj](t, c.do(http.MethodGet, "/api/movements?from=2030-01-02&to=2030-01-01", nil))
	require.Empty(t, inverted)

	t.Run("InvalidMovements_Are400", func(t *testing.T) {
		for _, in := range []obj{
			{"type": "ingreso", "amount": "abc"},
			{"type": "ingreso", "amount": "0"},
			{"type": "egreso", "amount": "-5"},
			{"type": "otro", "amount": "5"},
		} {
			resp := c.do(http.MethodPost, "/api/movements", in)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, "%v", in)
		}
		require.Equal(t, "120", decode[obj](t, c.do(http.MethodGet, "/api/balance", nil))["balance"])
	})

	t.Run("BadQuery_Is400", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/movements?order=random", nil).StatusCode)
		require.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/movements?from=01/06/2024", nil).StatusCode)
	})

	t.Run("Me_ReportsConsistentBalance", func(t *testing.T) {
		me := decode[obj](t, c.do(http.MethodGet, "/api/me", nil))
		require.Equal(t, "Lucía", me["firstName"])
		require.Equal(t, "120", me["computedBalance"])
		require.Equal(t, false, me["pending"])
	})

	t.Run("PatchMe_ChangesName", func(t *testing.T) {
		resp := c.do(http.MethodPatch, "/api/me", obj{"lastName": "Gómez"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "Gómez", decode[obj](t, resp)["lastName"])
	})
}

func TestAPI_PartialFailureThenRepair(t *testing.T) {
	faulty := storetest.Wrap(store.NewMemoryStore())
	c := newClient(t, faulty)
	c.register("100")

	faulty.FailPatchAccount = true
	resp := c.do(http.MethodPost, "/api/movements", obj{"type": "ingreso", "amount": "25"})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[obj](t, resp)
	require.Equal(t, true, body["pending"])
	require.Equal(t, "125", body["balance"])
	faulty.FailPatchAccount = false

	me := decode[obj](t, c.do(http.MethodGet, "/api/me", nil))
	require.Equal(t, "100", me["balance"])
	require.Equal(t, "125", me["computedBalance"])
	require.Equal(t, true, me["pending"])

	rec := decode[obj](t, c.do(http.MethodPost, "/api/balance/reconcile", nil))
	require.Equal(t, false, rec["consistent"])
	require.Equal(t, false, rec["repaired"])
	require.Equal(t, "25", rec["drift"])

	rec = decode[obj](t, c.do(http.MethodPost, "/api/balance/reconcile?repair=true", nil))
	require.Equal(t, true, rec["repaired"])

	me = decode[obj](t, c.do(http.MethodGet, "/api/me", nil))
	require.Equal(t, "125", me["balance"])
	require.Equal(t, false, me["pending"])
}

func TestAPI_StoreDown_Is503(t *testing.T) {
	faulty := storetest.Wrap(store.NewMemoryStore())
	c := newClient(t, faulty)
	c.register("0")

	faulty.FailFetchMovements = true
	require.Equal(t, http.StatusServiceUnavailable, c.do(http.MethodGet, "/api/movements", nil).StatusCode)
}

func TestAPI_InventoryFlow(t *testing.T) {
	c := newClient(t, store.NewMemoryStore())
	c.register("0")

	resp := c.do(http.MethodPost, "/api/products", obj{"name": "Auriculares", "costPrice": "20", "provider": "Mayorista"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[obj](t, resp)
	require.Equal(t, false, created["sold"])
	require.NotContains(t, created, "profit")
	path := "/api/products/" + jsonID(created)

	summary := decode[obj](t, c.do(http.MethodGet, "/api/reports/summary", nil))
	require.EqualValues(t, 1, summary["availableCount"])
	require.Equal(t, "20", summary["totalInvested"])

	resp = c.do(http.MethodPost, path+"/sell", obj{"soldPrice": "35", "paymentMethod": "efectivo", "buyerName": "Ana"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sold := decode[obj](t, resp)
	require.Equal(t, "15", sold["profit"])

	resp = c.do(http.MethodPost, path+"/sell", obj{"soldPrice": "99"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	got := decode[obj](t, c.do(http.MethodGet, path, nil))
	require.Equal(t, "35", got["soldPrice"])
	// whole days, truncated: a sale a moment ago leaves 29 full days
	require.InDelta(t, 30, got["warrantyRemaining"], 1)

	summary = decode[obj](t, c.do(http.MethodGet, "/api/reports/summary", nil))
	require.EqualValues(t, 0, summary["availableCount"])
	require.Equal(t, "0", summary["totalInvested"])
	require.Equal(t, "15", summary["totalProfit"])

	require.Empty(t, decode[[]obj](t, c.do(http.MethodGet, "/api/products?status=available", nil)))
	require.Len(t, decode[[]obj](t, c.do(http.MethodGet, "/api/products?status=sold&q=AURI", nil)), 1)
	require.Empty(t, decode[[]obj](t, c.do(http.MethodGet, "/api/products?q=tablet", nil)))

	t.Run("Export_IsWorkbook", func(t *testing.T) {
		resp := c.do(http.MethodGet, "/api/reports/export", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(raw))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(report.SalesSheet)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, "Auriculares", rows[1][1])
	})

	t.Run("Errors", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/products", obj{"name": "x", "costPrice": "0"}).StatusCode)
		require.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/products/abc", nil).StatusCode)
		require.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/products?status=lost", nil).StatusCode)
		require.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/products/999", nil).StatusCode)
		require.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, "/api/products/999", nil).StatusCode)
	})

	t.Run("Delete", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, path, nil).StatusCode)
		require.Empty(t, decode[[]obj](t, c.do(http.MethodGet, "/api/products", nil)))
	})
}

// upload builds a multipart request carrying raw as the "file" field.
func upload(t *testing.T, filename string, raw []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(raw)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow(sheet, "A"+strconv.Itoa(i+1), &row))
	}
	wb, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return wb.Bytes()
}

func TestAPI_ImportProducts(t *testing.T) {
	c := newClient(t, store.NewMemoryStore())
	c.register("0")

	wb := workbook(t,
		[]any{"Nombre", "Costo"},
		[]any{"Parlante", "45"},
		[]any{"Cable", "x"},
	)
	resp := c.send(upload(t, "productos.xlsx", wb))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[obj](t, resp)
	require.EqualValues(t, 1, res["imported"])
	require.EqualValues(t, 1, res["failed"])

	list := decode[[]obj](t, c.do(http.MethodGet, "/api/products", nil))
	require.Len(t, list, 1)
	require.Equal(t, "Parlante", list[0]["name"])

	t.Run("WrongExtension_Is400", func(t *testing.T) {
		req := upload(t, "productos.csv", []byte("a,b\n"))
		require.Equal(t, http.StatusBadRequest, c.send(req).StatusCode)
	})

	t.Run("StoreFailureMidway_Is503WithStoredRows", func(t *testing.T) {
		faulty := storetest.Wrap(store.NewMemoryStore())
		c := newClient(t, faulty)
		c.register("0")
		faulty.CreateProductsBeforeFailure = 1

		wb := workbook(t,
			[]any{"Lámpara", "15"},
			[]any{"Cable", "3"},
		)
		resp := c.send(upload(t, "productos.xlsx", wb))
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decode[obj](t, resp)
		require.Equal(t, true, body["partial"])
		require.NotEmpty(t, body["error"])
		result := body["result"].(obj)
		require.EqualValues(t, 1, result["imported"])
		rows := result["rows"].([]any)
		require.Len(t, rows, 1)
		require.Equal(t, "Lámpara", rows[0].(obj)["name"])
	})
}

func TestAPI_Auth(t *testing.T) {
	c := newClient(t, store.NewMemoryStore())

	require.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/balance", nil).StatusCode)

	resp := c.do(http.MethodPost, "/api/accounts", obj{"firstName": "", "initialBalance": "10"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = c.do(http.MethodPost, "/api/accounts", obj{"firstName": "Ana", "initialBalance": "-10"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	c.register("10")
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/balance", nil).StatusCode)

	other := newClient(t, store.NewMemoryStore())
	other.token = c.token
	require.Equal(t, http.StatusNotFound, other.do(http.MethodGet, "/api/balance", nil).StatusCode)
}

func jsonID(o obj) string {
	return strconv.Itoa(int(o["id"].(float64)))
}
