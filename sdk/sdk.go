package sdk

import (
	"context"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/mintseed/mintseed/schema"
)

// SDK drives the whole purchase from the buyer side: transfer the mint price
// to the treasury, wait for finality, then claim the mint with the transfer
// signature as payment proof.
type SDK struct {
	Cli *Client

	payer types.Account
	chain *client.Client
}

func NewSDK(serviceUrl, rpcEndpoint, payerKey string) (*SDK, error) {
	payer, err := types.AccountFromBase58(payerKey)
	if err != nil {
		return nil, fmt.Errorf("invalid payer key: %v", err)
	}
	return &SDK{
		Cli:   NewClient(serviceUrl),
		payer: payer,
		chain: client.NewClient(rpcEndpoint),
	}, nil
}

func (s *SDK) PayAndMint(ctx context.Context, recipientWallet string) (schema.RespMint, error) {
	info, err := s.Cli.GetInfo()
	if err != nil {
		return schema.RespMint{}, err
	}
	sig, err := s.Pay(ctx, info.Treasury, info.PriceLamports)
	if err != nil {
		return schema.RespMint{}, err
	}
	if err := s.waitFinalized(ctx, sig); err != nil {
		return schema.RespMint{}, err
	}
	return s.Cli.Mint(recipientWallet, sig)
}

// Pay transfers exactly amount lamports to the treasury. The service rejects
// any other amount, so callers must pass the advertised price untouched.
func (s *SDK) Pay(ctx context.Context, treasury string, amount int64) (string, error) {
	recent, err := s.chain.GetLatestBlockhash(ctx)
	if err != nil {
		return "", err
	}
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{s.payer},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        s.payer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				system.Transfer(system.TransferParam{
					From:   s.payer.PublicKey,
					To:     common.PublicKeyFromString(treasury),
					Amount: uint64(amount),
				}),
			},
		}),
	})
	if err != nil {
		return "", err
	}
	return s.chain.SendTransaction(ctx, tx)
}

func (s *SDK) waitFinalized(ctx context.Context, sig string) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		status, err := s.chain.GetSignatureStatus(ctx, sig)
		if err == nil && status != nil {
			if status.Err != nil {
				return fmt.Errorf("payment failed on chain: %v", status.Err)
			}
			if status.ConfirmationStatus != nil && *status.ConfirmationStatus == rpc.CommitmentFinalized {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
