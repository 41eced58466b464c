package mintseed

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mintseed/mintseed/schema"
)

func testContext(method, target string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&buf).Encode(payload)
	}
	c.Request = httptest.NewRequest(method, target, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestMintAssetRejectsBadRequests(t *testing.T) {
	s := newTestMintseed(t, &mockLedger{})

	// missing payment proof
	c, w := testContext(http.MethodPost, "/api/mint", schema.MintReq{RecipientWallet: testBuyer})
	s.mintAsset(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// malformed wallet
	c, w = testContext(http.MethodPost, "/api/mint", schema.MintReq{RecipientWallet: "bogus", PaymentProofId: "pay1"})
	s.mintAsset(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMintAssetDuplicateStatus(t *testing.T) {
	s := newTestMintseed(t, &mockLedger{})
	req := schema.MintReq{RecipientWallet: testBuyer, PaymentProofId: "pay1"}

	c, w := testContext(http.MethodPost, "/api/mint", req)
	s.mintAsset(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = testContext(http.MethodPost, "/api/mint", req)
	s.mintAsset(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	respErr := schema.RespErr{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respErr))
	assert.Equal(t, schema.CodeDuplicateTx, respErr.Error.Code)
}

func TestGetInfoHandler(t *testing.T) {
	ledger := &mockLedger{
		issuedCount: func() (uint64, error) { return 42, nil },
	}
	s := newTestMintseed(t, ledger)
	s.treeAddr = "tree1"
	s.collectionAddr = "coll1"

	c, w := testContext(http.MethodGet, "/api/info", nil)
	s.getInfo(c)
	assert.Equal(t, http.StatusOK, w.Code)

	info := schema.RespInfo{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, uint64(42), info.Issued)
	assert.Equal(t, uint64(100), info.MaxSupply)
	assert.Equal(t, testTreasury, info.Treasury)
	assert.Equal(t, testPrice, info.PriceLamports)
	assert.Equal(t, "0.1 SOL", info.PriceSol)
}

func TestGetMintOrderHandler(t *testing.T) {
	s := newTestMintseed(t, &mockLedger{})

	_, err := s.ProcessMint(context.Background(), schema.MintReq{RecipientWallet: testBuyer, PaymentProofId: "pay1"})
	assert.NoError(t, err)

	c, w := testContext(http.MethodGet, "/api/mint/pay1", nil)
	c.Params = gin.Params{{Key: "paymentId", Value: "pay1"}}
	s.getMintOrder(c)
	assert.Equal(t, http.StatusOK, w.Code)

	order := schema.MintOrder{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, schema.MintConfirmed, order.Status)

	c, w = testContext(http.MethodGet, "/api/mint/ghost", nil)
	c.Params = gin.Params{{Key: "paymentId", Value: "ghost"}}
	s.getMintOrder(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
