// Package channel backs the registry's channel handles with hashicorp
// go-plugin clients: a spawned host binary, a handshake, and a multiplexed
// RPC connection.
package channel

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"

	"plugforge.dev/cli/internal/process"
	"plugforge.dev/cli/internal/registry"
)

// Handshake returns the handshake configuration shared with host binaries.
func Handshake() plugin.HandshakeConfig {
	return plugin.HandshakeConfig{
		ProtocolVersion:  1,
		MagicCookieKey:   "PLUGFORGE_PLUGIN",
		MagicCookieValue: "plugforge_host",
	}
}

// PluginMap returns the plugin map used for the handshake. The launcher only
// needs the connection itself; hosts expose their domain interface under the
// "host" key.
func PluginMap() map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		"host": &hostGRPCPlugin{},
	}
}

// hostGRPCPlugin is the client-side half of the go-plugin contract. The host
// binary provides the server side.
type hostGRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
}

func (p *hostGRPCPlugin) GRPCServer(broker *plugin.GRPCBroker, s *grpc.Server) error {
	// Implemented by the host binary, not the CLI.
	return nil
}

func (p *hostGRPCPlugin) GRPCClient(ctx context.Context, broker *plugin.GRPCBroker, c *grpc.ClientConn) (interface{}, error) {
	return c, nil
}

// Spawner returns a factory-shaped function that launches cmd as a plugin
// host and wraps the resulting client in a registry.Channel.
func Spawner(log hclog.Logger) func(ctx context.Context, cmd process.Command) (registry.Channel, error) {
	return func(ctx context.Context, cmd process.Command) (registry.Channel, error) {
		return spawn(cmd, log)
	}
}

func spawn(cmd process.Command, log hclog.Logger) (registry.Channel, error) {
	execCmd := exec.Command(cmd.Executable(), cmd.Args()...)
	execCmd.Dir = cmd.WorkingDir()
	if env := cmd.Env(); len(env) > 0 {
		execCmd.Env = os.Environ()
		for k, v := range env {
			execCmd.Env = append(execCmd.Env, k+"="+v)
		}
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  Handshake(),
		Plugins:          PluginMap(),
		Cmd:              execCmd,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Logger:           log,
	})

	proto, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to connect to host %q: %w", cmd.Executable(), err)
	}

	return &pluginChannel{client: client, proto: proto}, nil
}

// pluginChannel adapts a go-plugin client to the registry Channel interface.
type pluginChannel struct {
	client *plugin.Client
	proto  plugin.ClientProtocol
}

func (c *pluginChannel) Ping() error {
	return c.proto.Ping()
}

func (c *pluginChannel) Running() bool {
	return !c.client.Exited()
}

func (c *pluginChannel) Close() error {
	err := c.proto.Close()
	c.client.Kill()
	return err
}
