// Command lambda runs one publish pipeline per scheduled AWS Lambda event.
//
// Event:
//
//	{"provider": "airparif", "action": "today", "dry_run": false, "verbose": false}
//
// Environment variables are the same as for the airparif and atmosud commands.
package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"

	"air_bot/internal/app"
	"air_bot/internal/config"
	"air_bot/internal/model"
)

// Event selects the provider and action of one invocation.
type Event struct {
	Provider string `json:"provider"`
	Action   string `json:"action"`
	DryRun   bool   `json:"dry_run"`
	Verbose  bool   `json:"verbose"`
}

// Response is returned to the Lambda runtime on success.
type Response struct {
	Provider string `json:"provider"`
	Action   string `json:"action"`
	DryRun   bool   `json:"dry_run"`
	Message  string `json:"message"`
}

// Handler runs the requested action.
func Handler(ctx context.Context, ev Event) (Response, error) {
	cfg, err := config.Load(ev.Provider)
	if err != nil {
		return Response{}, fmt.Errorf("load config: %w", err)
	}

	req := model.Request{
		Action:  model.Action(ev.Action),
		DryRun:  ev.DryRun,
		Verbose: ev.Verbose,
	}
	log := app.NewLogger(cfg.LogLevel, req.Verbose)

	if err := app.Run(ctx, cfg, req, log); err != nil {
		log.Error("run failed", "provider", ev.Provider, "action", ev.Action, "error", err)
		app.Report(cfg, req.Action, err, log)
		return Response{}, err
	}

	msg := "published"
	if req.DryRun {
		msg = "dry run completed"
	}
	return Response{Provider: ev.Provider, Action: ev.Action, DryRun: ev.DryRun, Message: msg}, nil
}

func main() {
	lambda.Start(Handler)
}
