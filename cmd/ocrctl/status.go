package main

import (
	"context"
	"fmt"

	"doc-study-server/internal/domain"
	"doc-study-server/internal/ocr"
)

type StatusCommand struct {
	ProviderFlags

	Handle string `arg:"" help:"Operation-Location URL returned by a submission."`
}

func (c StatusCommand) Run(ctx context.Context) error {
	poller, _ := c.poller(ocr.Config{})

	op, err := poller.CheckStatus(ctx, domain.OperationHandle(c.Handle))
	if err != nil {
		return err
	}
	fmt.Println(op.Status)
	if op.Result != nil {
		fmt.Println(op.Result.Text())
	}
	return nil
}
