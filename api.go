package mintseed

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mintseed/mintseed/common"
	"github.com/mintseed/mintseed/schema"
)

func (s *Mintseed) runAPI(port string) {
	r := s.engine
	r.Use(common.CORSMiddleware())
	v1 := r.Group("/api")
	{
		v1.GET("/", s.health)
		v1.GET("/info", s.getInfo)
		v1.GET("/events", s.streamEvents)
		v1.GET("/mint/:paymentId", s.getMintOrder)
		v1.GET("/orders/:recipient", s.getOrders)

		mint := v1.Group("/")
		mint.Use(common.LimiterMiddleware(60, "M", nil))
		mint.POST("/mint", s.mintAsset)

		admin := v1.Group("/admin")
		admin.POST("/tree", s.createTree)
		admin.POST("/collection", s.createCollection)
		admin.POST("/price", s.setPrice)
	}

	if err := r.Run(port); err != nil {
		panic(err)
	}
}

func (s *Mintseed) health(c *gin.Context) {
	c.String(http.StatusOK, "successful")
}

func (s *Mintseed) mintAsset(c *gin.Context) {
	req := schema.MintReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	if len(req.PaymentProofId) == 0 {
		errorResponse(c, "paymentProofId can not be null")
		return
	}
	if !validWallet(req.RecipientWallet) {
		errorResponse(c, "invalid recipient wallet")
		return
	}

	resp, err := s.ProcessMint(c.Request.Context(), req)
	if err != nil {
		status, body := respError(err, req.PaymentProofId)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Mintseed) getInfo(c *gin.Context) {
	issued, err := s.ledger.IssuedCount(c.Request.Context())
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	price := s.cfg.PriceLamports()
	c.JSON(http.StatusOK, schema.RespInfo{
		Collection:    s.collectionAddr,
		Tree:          s.treeAddr,
		Treasury:      s.ledger.TreasuryWallet(),
		Issued:        issued,
		MaxSupply:     s.cfg.MaxSupply,
		PriceLamports: price,
		PriceSol:      lamportsToSol(price),
	})
}

func (s *Mintseed) getMintOrder(c *gin.Context) {
	paymentId := c.Param("paymentId")
	order, err := s.wdb.GetOrderByPayment(paymentId)
	if err != nil {
		c.JSON(http.StatusNotFound, schema.RespErr{
			Success: false,
			Error:   schema.ErrObj{Code: schema.CodeVerifyFailed, Message: "no mint order for this transaction", Txid: paymentId},
		})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Mintseed) getOrders(c *gin.Context) {
	recipient := c.Param("recipient")
	if !validWallet(recipient) {
		errorResponse(c, "invalid recipient wallet")
		return
	}
	cursorId, err := strAsUint(c.DefaultQuery("cursorId", "0"))
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	num := 200
	orders, err := s.wdb.GetOrdersByRecipient(recipient, uint(cursorId), num)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Mintseed) streamEvents(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	c.Stream(func(w io.Writer) bool {
		select {
		case evt, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("mint", evt)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Mintseed) createTree(c *gin.Context) {
	if s.boot == nil {
		errorResponse(c, "bootstrap not available")
		return
	}
	req := struct {
		MaxDepth      uint32 `json:"maxDepth"`
		MaxBufferSize uint32 `json:"maxBufferSize"`
		Public        bool   `json:"public"`
	}{MaxDepth: 14, MaxBufferSize: 64}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, err.Error())
			return
		}
	}
	addr, sig, err := s.boot.CreateTree(c.Request.Context(), req.MaxDepth, req.MaxBufferSize, req.Public)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespAdminTx{Success: true, Address: addr, Signature: sig})
}

func (s *Mintseed) createCollection(c *gin.Context) {
	if s.boot == nil {
		errorResponse(c, "bootstrap not available")
		return
	}
	req := struct {
		Name string `json:"name"`
		Uri  string `json:"uri"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	if len(req.Name) == 0 || len(req.Uri) == 0 {
		errorResponse(c, "name and uri can not be null")
		return
	}
	addr, sig, err := s.boot.CreateCollection(c.Request.Context(), req.Name, req.Uri)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespAdminTx{Success: true, Address: addr, Signature: sig})
}

func (s *Mintseed) setPrice(c *gin.Context) {
	req := struct {
		Lamports int64 `json:"lamports"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	if req.Lamports <= 0 {
		errorResponse(c, "lamports must be positive")
		return
	}
	if err := s.cfg.SetPrice(req.Lamports); err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"priceLamports": req.Lamports})
}

func strAsUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func errorResponse(c *gin.Context, err string) {
	// client error
	c.JSON(http.StatusBadRequest, gin.H{"error": err})
}

func internalErrorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err})
}
