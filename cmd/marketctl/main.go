package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	httptransport "nftmarket/contexts/marketplace/settlement-engine/transport/http"
	"nftmarket/internal/app/bootstrap"
)

// Operator CLI for marketplace administration. Commands run against the
// same registry and ledger the API uses, as the account given by --as
// (default MARKETPLACE_OWNER).
func main() {
	app := &cli.App{
		Name:  "marketctl",
		Usage: "administer the NFT marketplace settlement engine",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "as", Usage: "caller account", EnvVars: []string{"MARKETCTL_ACCOUNT"}},
		},
		Commands: []*cli.Command{
			{
				Name:   "show-config",
				Usage:  "print the marketplace configuration",
				Action: withMarketplace(showConfig),
			},
			{
				Name:      "set-fee",
				Usage:     "set the marketplace fee in basis points",
				ArgsUsage: "<fee_bps>",
				Action:    withMarketplace(setFee),
			},
			{
				Name:      "set-fee-recipient",
				Usage:     "set the account receiving marketplace fees",
				ArgsUsage: "<account>",
				Action:    withMarketplace(setFeeRecipient),
			},
			{
				Name:      "set-template",
				Usage:     "set the collection template code hash",
				ArgsUsage: "<code_hash>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Value: "psp34", Usage: "contract type: psp34 or rmrk"},
				},
				Action: withMarketplace(setTemplate),
			},
			{
				Name:  "register",
				Usage: "register an existing collection",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "collection", Required: true},
					&cli.StringFlag{Name: "royalty-receiver", Required: true},
					&cli.UintFlag{Name: "royalty", Usage: "royalty in basis points"},
					&cli.StringFlag{Name: "metadata", Usage: "metadata uri"},
				},
				Action: withMarketplace(register),
			},
			{
				Name:      "set-metadata",
				Usage:     "update the metadata uri of a registered collection",
				ArgsUsage: "<collection> <uri>",
				Action:    withMarketplace(setMetadata),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("marketctl failed",
			"event", "marketctl_failed",
			"module", "cmd/marketctl",
			"layer", "cli",
			"error", err.Error(),
		)
		os.Exit(1)
	}
}

type action func(c *cli.Context, app *bootstrap.MarketplaceApp, caller string) (any, error)

func withMarketplace(run action) cli.ActionFunc {
	return func(c *cli.Context) error {
		app, err := bootstrap.BuildMarketplace(c.Context, "marketctl")
		if err != nil {
			return err
		}
		defer app.Close()

		caller := c.String("as")
		if caller == "" {
			caller = app.Config.Marketplace.Owner
		}
		out, err := run(c, app, caller)
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}
}

func showConfig(c *cli.Context, app *bootstrap.MarketplaceApp, _ string) (any, error) {
	return app.Module.Handler.GetConfigHandler(c.Context)
}

func setFee(c *cli.Context, app *bootstrap.MarketplaceApp, caller string) (any, error) {
	fee, err := strconv.ParseUint(c.Args().First(), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("fee_bps must be an integer: %w", err)
	}
	return app.Module.Handler.SetMarketplaceFeeHandler(c.Context, caller, httptransport.SetMarketplaceFeeRequest{
		FeeBPS: uint16(fee),
	})
}

func setFeeRecipient(c *cli.Context, app *bootstrap.MarketplaceApp, caller string) (any, error) {
	return app.Module.Handler.SetFeeRecipientHandler(c.Context, caller, httptransport.SetFeeRecipientRequest{
		FeeRecipient: c.Args().First(),
	})
}

func setTemplate(c *cli.Context, app *bootstrap.MarketplaceApp, caller string) (any, error) {
	return app.Module.Handler.SetTemplateHandler(c.Context, caller, c.String("type"), httptransport.SetTemplateRequest{
		CodeHash: c.Args().First(),
	})
}

func register(c *cli.Context, app *bootstrap.MarketplaceApp, caller string) (any, error) {
	royalty := c.Uint("royalty")
	if royalty > 0xFFFF {
		return nil, fmt.Errorf("royalty %d is out of range", royalty)
	}
	return app.Module.Handler.RegisterCollectionHandler(c.Context, caller, httptransport.RegisterCollectionRequest{
		Collection:      c.String("collection"),
		RoyaltyReceiver: c.String("royalty-receiver"),
		RoyaltyBPS:      uint16(royalty),
		MetadataURI:     c.String("metadata"),
	})
}

func setMetadata(c *cli.Context, app *bootstrap.MarketplaceApp, caller string) (any, error) {
	if c.NArg() != 2 {
		return nil, fmt.Errorf("usage: set-metadata <collection> <uri>")
	}
	return app.Module.Handler.SetContractMetadataHandler(c.Context, caller, c.Args().Get(0), httptransport.SetContractMetadataRequest{
		MetadataURI: c.Args().Get(1),
	})
}

