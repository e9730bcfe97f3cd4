package app

import (
	"context"
	"errors"
	"strings"

	"quicktui/internal/lifecycle"
)

// StartParams selects the VM to start and whether to connect once it boots.
type StartParams struct {
	ID      string
	Connect bool
}

// StartResult carries the viewer launch when StartParams.Connect was set.
type StartResult struct {
	Launch *lifecycle.Launch
}

// Start launches a VM, optionally waiting for it and connecting a viewer.
func (a *App) Start(ctx context.Context, params StartParams) (StartResult, error) {
	id, err := requireID(params.ID)
	if err != nil {
		return StartResult{}, err
	}
	if !params.Connect {
		return StartResult{}, a.ctrl.Start(ctx, id)
	}
	launch, err := a.ctrl.StartAndConnect(ctx, id)
	if err != nil {
		return StartResult{}, err
	}
	return StartResult{Launch: &launch}, nil
}

// StopParams selects the VM to stop and how hard.
type StopParams struct {
	ID    string
	Force bool
}

// Stop requests a graceful shutdown, or kills the VM when Force is set.
func (a *App) Stop(ctx context.Context, params StopParams) error {
	id, err := requireID(params.ID)
	if err != nil {
		return err
	}
	if params.Force {
		return a.ctrl.ForceStop(ctx, id)
	}
	return a.ctrl.Stop(ctx, id)
}

// ConnectParams selects the VM and whether SPICE is forced.
type ConnectParams struct {
	ID    string
	Spice bool
}

// Connect opens a viewer for a running VM.
func (a *App) Connect(ctx context.Context, params ConnectParams) (lifecycle.Launch, error) {
	id, err := requireID(params.ID)
	if err != nil {
		return lifecycle.Launch{}, err
	}
	if params.Spice {
		return a.ctrl.ConnectSpice(ctx, id)
	}
	return a.ctrl.Connect(ctx, id)
}

func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("vm id must not be empty")
	}
	return id, nil
}
