package mintseed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/compute_budget"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
	"github.com/tidwall/gjson"
	gentleman "gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/body"

	"github.com/mintseed/mintseed/schema"
)

const (
	LamportsPerSol = 1_000_000_000

	bubblegumProgram      = "BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY"
	splNoopProgram        = "noopb9bkMVfRPU8AsbpTGmwQkHdMeDuJLSXJmQqMYwM"
	splCompressionProgram = "cmtDvXcWWxBmpW2zDgCVYZzW5JZCz7iRuAK8BzTnkF1"

	computeUnitLimit = 800_000

	// TreeConfig account data: anchor discriminator(8) + tree_creator(32) +
	// tree_delegate(32) + total_mint_capacity(8), then num_minted u64 le
	numMintedOffset = 80

	confirmPollInterval = 2 * time.Second
)

// SolanaLedger talks to the chain through two paths: the sdk rpc client for
// balances, submission and confirmation, and a raw jsonParsed lookup used by
// the participant check.
type SolanaLedger struct {
	cli     *client.Client
	httpCli *gentleman.Client

	signer     types.Account // mint authority and fee payer
	treasury   common.PublicKey
	tree       common.PublicKey
	treeAuth   common.PublicKey
	collection common.PublicKey
}

func NewSolanaLedger(endpoint, apiKey, signerKey, treasury, treeAddr, collectionAddr string) (*SolanaLedger, error) {
	url := endpoint
	if len(apiKey) > 0 {
		url = fmt.Sprintf("%s?api-key=%s", endpoint, apiKey)
	}
	signer, err := types.AccountFromBase58(signerKey)
	if err != nil {
		return nil, fmt.Errorf("invalid signer key: %v", err)
	}

	tree := common.PublicKeyFromString(treeAddr)
	treeAuth, _, err := common.FindProgramAddress(
		[][]byte{tree.Bytes()},
		common.PublicKeyFromString(bubblegumProgram),
	)
	if err != nil {
		return nil, err
	}

	return &SolanaLedger{
		cli:        client.NewClient(url),
		httpCli:    gentleman.New().URL(url),
		signer:     signer,
		treasury:   common.PublicKeyFromString(treasury),
		tree:       tree,
		treeAuth:   treeAuth,
		collection: common.PublicKeyFromString(collectionAddr),
	}, nil
}

func (s *SolanaLedger) TreasuryWallet() string {
	return s.treasury.ToBase58()
}

func (s *SolanaLedger) LookupTransaction(ctx context.Context, txId string) (*schema.TxInfo, error) {
	tx, err := s.cli.GetTransaction(ctx, txId)
	if err != nil {
		log.Error("s.cli.GetTransaction(ctx,txId)", "err", err, "txId", txId)
		return nil, schema.ErrPaymentLookup
	}
	if tx == nil || tx.Meta == nil {
		return nil, schema.ErrPaymentNotFound
	}

	keys := make([]string, 0, len(tx.Transaction.Message.Accounts))
	for _, acc := range tx.Transaction.Message.Accounts {
		keys = append(keys, acc.ToBase58())
	}
	return &schema.TxInfo{
		Signature:    txId,
		Fee:          tx.Meta.Fee,
		PreBalances:  tx.Meta.PreBalances,
		PostBalances: tx.Meta.PostBalances,
		AccountKeys:  keys,
	}, nil
}

// LookupParticipants resolves the transaction through the jsonParsed rpc
// encoding, which carries per-account signer/writable flags the binary
// lookup does not.
func (s *SolanaLedger) LookupParticipants(ctx context.Context, txId string) (*schema.TxParticipants, error) {
	req := s.httpCli.Post()
	req.Use(body.JSON(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "getTransaction",
		"params": []interface{}{
			txId,
			map[string]interface{}{
				"encoding":                       "jsonParsed",
				"commitment":                     "confirmed",
				"maxSupportedTransactionVersion": 0,
			},
		},
	}))
	res, err := req.Send()
	if err != nil {
		return nil, err
	}
	if !res.Ok {
		return nil, fmt.Errorf("rpc response status: %d", res.StatusCode)
	}

	root := gjson.ParseBytes(res.Bytes())
	if rpcErr := root.Get("error"); rpcErr.Exists() {
		return nil, errors.New(rpcErr.Get("message").String())
	}
	result := root.Get("result")
	if !result.Exists() || result.Type == gjson.Null {
		return nil, schema.ErrPaymentNotFound
	}

	parts := &schema.TxParticipants{}
	result.Get("transaction.message.accountKeys").ForEach(func(_, acc gjson.Result) bool {
		pubkey := acc.Get("pubkey").String()
		parts.All = append(parts.All, pubkey)
		if acc.Get("signer").Bool() {
			parts.Signers = append(parts.Signers, pubkey)
		}
		if acc.Get("writable").Bool() {
			parts.Writable = append(parts.Writable, pubkey)
		}
		return true
	})
	if len(parts.All) == 0 {
		return nil, schema.ErrPaymentLookup
	}
	parts.FeePayer = parts.All[0]
	return parts, nil
}

// IssuedCount reads num_minted from the tree config account.
func (s *SolanaLedger) IssuedCount(ctx context.Context) (uint64, error) {
	info, err := s.cli.GetAccountInfo(ctx, s.treeAuth.ToBase58())
	if err != nil {
		return 0, err
	}
	return parseTreeConfigCount(info.Data)
}

func parseTreeConfigCount(data []byte) (uint64, error) {
	if len(data) < numMintedOffset+8 {
		return 0, fmt.Errorf("tree config account too short: %d bytes", len(data))
	}
	return binary.LittleEndian.Uint64(data[numMintedOffset:]), nil
}

func (s *SolanaLedger) SubmitMint(ctx context.Context, params schema.MintParams) (string, error) {
	mintIx, err := s.mintToCollectionIx(params)
	if err != nil {
		return "", err
	}

	recent, err := s.cli.GetLatestBlockhash(ctx)
	if err != nil {
		return "", err
	}
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{s.signer},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        s.signer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				compute_budget.SetComputeUnitLimit(compute_budget.SetComputeUnitLimitParam{
					Units: computeUnitLimit,
				}),
				mintIx,
			},
		}),
	})
	if err != nil {
		return "", err
	}

	return s.cli.SendTransaction(ctx, tx)
}

func (s *SolanaLedger) Confirm(ctx context.Context, sig string) (*schema.LeafInfo, error) {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		status, err := s.signatureStatus(ctx, sig)
		if err != nil {
			log.Warn("s.signatureStatus(ctx,sig)", "err", err, "sig", sig)
		} else if status != nil {
			if status.Err != nil {
				return nil, fmt.Errorf("transaction failed on chain: %v", status.Err)
			}
			if status.ConfirmationStatus != nil && *status.ConfirmationStatus == rpc.CommitmentFinalized {
				return &schema.LeafInfo{Tree: s.tree.ToBase58()}, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, schema.ErrConfirmTimeout
		case <-ticker.C:
		}
	}
}

// signatureStatus polls with transaction history search, so a signature that
// has aged out of the node's recent-status cache still resolves when the
// reconcile job gets to it.
func (s *SolanaLedger) signatureStatus(ctx context.Context, sig string) (*rpc.SignatureStatus, error) {
	res, err := s.cli.RpcClient.GetSignatureStatusesWithConfig(
		ctx,
		[]string{sig},
		rpc.GetSignatureStatusesConfig{SearchTransactionHistory: true},
	)
	if err != nil {
		return nil, err
	}
	if res.Error != nil {
		return nil, res.Error
	}
	if len(res.Result.Value) == 0 {
		return nil, nil
	}
	return res.Result.Value[0], nil
}

// DeriveAssetId computes the asset pda: ["asset", tree, leaf_index le] under
// the bubblegum program.
func (s *SolanaLedger) DeriveAssetId(leaf *schema.LeafInfo) (string, error) {
	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonce, leaf.LeafIndex)
	pda, _, err := common.FindProgramAddress(
		[][]byte{[]byte("asset"), s.tree.Bytes(), nonce},
		common.PublicKeyFromString(bubblegumProgram),
	)
	if err != nil {
		return "", err
	}
	return pda.ToBase58(), nil
}

// borsh layouts of the bubblegum MetadataArgs; pointers encode as options.
type borshCreator struct {
	Address  common.PublicKey
	Verified bool
	Share    uint8
}

type borshCollection struct {
	Verified bool
	Key      common.PublicKey
}

type borshUses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

type metadataArgs struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *uint8
	Collection           *borshCollection
	Uses                 *borshUses
	TokenProgramVersion  uint8
	Creators             []borshCreator
}

type createTreeArgs struct {
	MaxDepth      uint32
	MaxBufferSize uint32
	Public        *bool
}

// anchorDiscriminator is the 8 byte method selector of anchor programs.
func anchorDiscriminator(method string) []byte {
	h := sha256.Sum256([]byte("global:" + method))
	return h[:8]
}

func (s *SolanaLedger) mintToCollectionIx(params schema.MintParams) (types.Instruction, error) {
	leafOwner := common.PublicKeyFromString(params.RecipientWallet)

	creators := make([]borshCreator, 0, len(params.Metadata.Creators))
	for _, c := range params.Metadata.Creators {
		creators = append(creators, borshCreator{
			Address:  common.PublicKeyFromString(c.Address),
			Verified: c.Verified,
			Share:    c.Share,
		})
	}
	tokenStandard := uint8(0) // non fungible
	args := metadataArgs{
		Name:                 params.Metadata.Name,
		Symbol:               "",
		Uri:                  params.Metadata.Uri,
		SellerFeeBasisPoints: params.Metadata.RoyaltyBasisPoints,
		IsMutable:            true,
		TokenStandard:        &tokenStandard,
		Collection:           &borshCollection{Verified: true, Key: s.collection},
		TokenProgramVersion:  0, // original
		Creators:             creators,
	}
	argData, err := borsh.Serialize(args)
	if err != nil {
		return types.Instruction{}, err
	}

	bubblegum := common.PublicKeyFromString(bubblegumProgram)
	bubblegumSigner, _, err := common.FindProgramAddress([][]byte{[]byte("collection_cpi")}, bubblegum)
	if err != nil {
		return types.Instruction{}, err
	}
	collectionMetadata, err := token_metadata.GetTokenMetaPubkey(s.collection)
	if err != nil {
		return types.Instruction{}, err
	}
	collectionEdition, err := token_metadata.GetMasterEdition(s.collection)
	if err != nil {
		return types.Instruction{}, err
	}

	return types.Instruction{
		ProgramID: bubblegum,
		Accounts: []types.AccountMeta{
			{PubKey: s.treeAuth, IsSigner: false, IsWritable: true},
			{PubKey: leafOwner, IsSigner: false, IsWritable: false},
			{PubKey: leafOwner, IsSigner: false, IsWritable: false}, // leaf delegate
			{PubKey: s.tree, IsSigner: false, IsWritable: true},
			{PubKey: s.signer.PublicKey, IsSigner: true, IsWritable: true}, // payer
			{PubKey: s.signer.PublicKey, IsSigner: true, IsWritable: false}, // tree delegate
			{PubKey: s.signer.PublicKey, IsSigner: true, IsWritable: false}, // collection authority
			{PubKey: bubblegum, IsSigner: false, IsWritable: false},         // no authority record pda
			{PubKey: s.collection, IsSigner: false, IsWritable: false},
			{PubKey: collectionMetadata, IsSigner: false, IsWritable: true},
			{PubKey: collectionEdition, IsSigner: false, IsWritable: false},
			{PubKey: bubblegumSigner, IsSigner: false, IsWritable: false},
			{PubKey: common.PublicKeyFromString(splNoopProgram), IsSigner: false, IsWritable: false},
			{PubKey: common.PublicKeyFromString(splCompressionProgram), IsSigner: false, IsWritable: false},
			{PubKey: common.MetaplexTokenMetaProgramID, IsSigner: false, IsWritable: false},
			{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
		},
		Data: append(anchorDiscriminator("mint_to_collection_v1"), argData...),
	}, nil
}

// CreateTree allocates the merkle tree account and initializes it through
// bubblegum. One-time bootstrap; the service then runs against the address.
func (s *SolanaLedger) CreateTree(ctx context.Context, maxDepth, maxBufferSize uint32, public bool) (string, string, error) {
	treeAccount := types.NewAccount()
	space := merkleTreeSize(maxDepth, maxBufferSize)

	rent, err := s.cli.GetMinimumBalanceForRentExemption(ctx, space)
	if err != nil {
		return "", "", err
	}

	bubblegum := common.PublicKeyFromString(bubblegumProgram)
	treeAuth, _, err := common.FindProgramAddress([][]byte{treeAccount.PublicKey.Bytes()}, bubblegum)
	if err != nil {
		return "", "", err
	}

	pub := public
	argData, err := borsh.Serialize(createTreeArgs{
		MaxDepth:      maxDepth,
		MaxBufferSize: maxBufferSize,
		Public:        &pub,
	})
	if err != nil {
		return "", "", err
	}

	createIx := types.Instruction{
		ProgramID: bubblegum,
		Accounts: []types.AccountMeta{
			{PubKey: treeAuth, IsSigner: false, IsWritable: true},
			{PubKey: treeAccount.PublicKey, IsSigner: false, IsWritable: true},
			{PubKey: s.signer.PublicKey, IsSigner: true, IsWritable: true},  // payer
			{PubKey: s.signer.PublicKey, IsSigner: true, IsWritable: false}, // tree creator
			{PubKey: common.PublicKeyFromString(splNoopProgram), IsSigner: false, IsWritable: false},
			{PubKey: common.PublicKeyFromString(splCompressionProgram), IsSigner: false, IsWritable: false},
			{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
		},
		Data: append(anchorDiscriminator("create_tree"), argData...),
	}

	recent, err := s.cli.GetLatestBlockhash(ctx)
	if err != nil {
		return "", "", err
	}
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{s.signer, treeAccount},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        s.signer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				system.CreateAccount(system.CreateAccountParam{
					From:     s.signer.PublicKey,
					New:      treeAccount.PublicKey,
					Owner:    common.PublicKeyFromString(splCompressionProgram),
					Lamports: rent,
					Space:    space,
				}),
				createIx,
			},
		}),
	})
	if err != nil {
		return "", "", err
	}
	sig, err := s.cli.SendTransaction(ctx, tx)
	if err != nil {
		return "", "", err
	}
	return treeAccount.PublicKey.ToBase58(), sig, nil
}

// CreateCollection mints the collection parent nft the minted leaves verify
// against.
func (s *SolanaLedger) CreateCollection(ctx context.Context, name, uri string) (string, string, error) {
	mint := types.NewAccount()

	ata, _, err := common.FindAssociatedTokenAddress(s.signer.PublicKey, mint.PublicKey)
	if err != nil {
		return "", "", err
	}
	metadataPubkey, err := token_metadata.GetTokenMetaPubkey(mint.PublicKey)
	if err != nil {
		return "", "", err
	}
	editionPubkey, err := token_metadata.GetMasterEdition(mint.PublicKey)
	if err != nil {
		return "", "", err
	}
	mintRent, err := s.cli.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return "", "", err
	}
	recent, err := s.cli.GetLatestBlockhash(ctx)
	if err != nil {
		return "", "", err
	}

	maxSupply := uint64(0)
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{mint, s.signer},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        s.signer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				system.CreateAccount(system.CreateAccountParam{
					From:     s.signer.PublicKey,
					New:      mint.PublicKey,
					Owner:    common.TokenProgramID,
					Lamports: mintRent,
					Space:    token.MintAccountSize,
				}),
				token.InitializeMint(token.InitializeMintParam{
					Decimals:   0,
					Mint:       mint.PublicKey,
					MintAuth:   s.signer.PublicKey,
					FreezeAuth: &s.signer.PublicKey,
				}),
				token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
					Metadata:                metadataPubkey,
					Mint:                    mint.PublicKey,
					MintAuthority:           s.signer.PublicKey,
					UpdateAuthority:         s.signer.PublicKey,
					Payer:                   s.signer.PublicKey,
					UpdateAuthorityIsSigner: true,
					IsMutable:               true,
					Data: token_metadata.DataV2{
						Name:                 name,
						Symbol:               "",
						Uri:                  uri,
						SellerFeeBasisPoints: 0,
						Creators: &[]token_metadata.Creator{
							{
								Address:  s.signer.PublicKey,
								Verified: true,
								Share:    100,
							},
						},
					},
					CollectionDetails: nil,
				}),
				associated_token_account.CreateAssociatedTokenAccount(
					associated_token_account.CreateAssociatedTokenAccountParam{
						Funder:                 s.signer.PublicKey,
						Owner:                  s.signer.PublicKey,
						Mint:                   mint.PublicKey,
						AssociatedTokenAccount: ata,
					},
				),
				token.MintTo(token.MintToParam{
					Mint:   mint.PublicKey,
					To:     ata,
					Auth:   s.signer.PublicKey,
					Amount: 1,
				}),
				token_metadata.CreateMasterEditionV3(token_metadata.CreateMasterEditionParam{
					Edition:         editionPubkey,
					Mint:            mint.PublicKey,
					UpdateAuthority: s.signer.PublicKey,
					MintAuthority:   s.signer.PublicKey,
					Metadata:        metadataPubkey,
					Payer:           s.signer.PublicKey,
					MaxSupply:       &maxSupply,
				}),
			},
		}),
	})
	if err != nil {
		return "", "", err
	}
	sig, err := s.cli.SendTransaction(ctx, tx)
	if err != nil {
		return "", "", err
	}
	return mint.PublicKey.ToBase58(), sig, nil
}

// merkleTreeSize sizes the account compression tree account: header(56) +
// tree head(24) + change log buffer + rightmost path. Canopy is not used.
func merkleTreeSize(maxDepth, maxBufferSize uint32) uint64 {
	depth := uint64(maxDepth)
	buffer := uint64(maxBufferSize)
	pathLen := 32*depth + 32 + 4 + 4
	changeLog := 32 + 32*depth + 4 + 4
	return 56 + 24 + buffer*changeLog + pathLen
}
