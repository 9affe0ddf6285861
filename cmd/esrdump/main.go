package main

import (
	"fmt"
	"log/slog"
	"os"

	"sigreq/sigreq"
)

func main() {
	if len(os.Args) != 2 {
		slog.Error("usage: esrdump <esr-uri>")
		os.Exit(1)
	}

	req, err := sigreq.FromURI(os.Args[1], sigreq.FlateCompressor{})
	if err != nil {
		slog.Error("failed to decode signing request", "error", err)
		os.Exit(1)
	}

	slog.Info("decoded signing request",
		"version", req.Version(),
		"chain_id", req.GetChainId().Hex(),
		"identity", req.IsIdentity(),
		"multi_chain", req.IsMultiChain(),
		"broadcast", req.ShouldBroadcast(),
		"background", req.IsBackground(),
		"callback", req.Callback(),
	)

	for i, a := range req.GetRawActions() {
		slog.Info("action", "index", i, "account", a.Account, "name", a.Name, "data_len", len(a.Data))
	}

	out, err := req.ToJSON()
	if err != nil {
		slog.Error("failed to render json summary", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
