package sdk

import (
	"errors"
	"fmt"

	gentleman "gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/body"

	"github.com/mintseed/mintseed/schema"
)

// Client is a thin wrapper over the mint service http api.
type Client struct {
	SCli *gentleman.Client
}

func NewClient(serviceUrl string) *Client {
	return &Client{
		SCli: gentleman.New().URL(serviceUrl),
	}
}

// Mint asks the service to mint against a paid transfer. The same paymentId
// can be resubmitted safely; a mint that already landed comes back as is.
func (c *Client) Mint(recipientWallet, paymentId string) (schema.RespMint, error) {
	req := c.SCli.Post()
	req.AddPath("/api/mint")
	req.Use(body.JSON(schema.MintReq{
		RecipientWallet: recipientWallet,
		PaymentProofId:  paymentId,
	}))
	resp, err := req.Send()
	if err != nil {
		return schema.RespMint{}, err
	}
	defer resp.Close()
	if !resp.Ok {
		respErr := schema.RespErr{}
		if err := resp.JSON(&respErr); err != nil {
			return schema.RespMint{}, errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
		}
		return schema.RespMint{}, errors.New(fmt.Sprintf("%s: %s", respErr.Error.Code, respErr.Error.Message))
	}
	res := schema.RespMint{}
	err = resp.JSON(&res)
	return res, err
}

func (c *Client) GetInfo() (schema.RespInfo, error) {
	req := c.SCli.Get()
	req.AddPath("/api/info")
	resp, err := req.Send()
	if err != nil {
		return schema.RespInfo{}, err
	}
	defer resp.Close()
	if !resp.Ok {
		return schema.RespInfo{}, errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
	}
	info := schema.RespInfo{}
	err = resp.JSON(&info)
	return info, err
}

func (c *Client) GetOrder(paymentId string) (schema.MintOrder, error) {
	req := c.SCli.Get()
	req.AddPath(fmt.Sprintf("/api/mint/%s", paymentId))
	resp, err := req.Send()
	if err != nil {
		return schema.MintOrder{}, err
	}
	defer resp.Close()
	if !resp.Ok {
		return schema.MintOrder{}, errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
	}
	order := schema.MintOrder{}
	err = resp.JSON(&order)
	return order, err
}

func (c *Client) GetOrders(recipientWallet string, cursorId uint64) ([]schema.MintOrder, error) {
	req := c.SCli.Get()
	req.AddPath(fmt.Sprintf("/api/orders/%s", recipientWallet))
	req.SetQuery("cursorId", fmt.Sprintf("%d", cursorId))
	resp, err := req.Send()
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	if !resp.Ok {
		return nil, errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
	}
	orders := make([]schema.MintOrder, 0)
	err = resp.JSON(&orders)
	return orders, err
}
