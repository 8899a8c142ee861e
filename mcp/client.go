package mcp

import (
	"context"

	"github.com/viant/jsonrpc"
	protoclient "github.com/viant/mcp-protocol/client"
	mcpschema "github.com/viant/mcp-protocol/schema"
)

// listingClient is the client side of connections used only to list tools.
// It advertises no capabilities and declines every server initiated request.
type listingClient struct{}

func (*listingClient) Init(context.Context, *mcpschema.ClientCapabilities) {}

func (*listingClient) OnNotification(context.Context, *jsonrpc.Notification) {}

func (*listingClient) Implements(string) bool { return false }

func (*listingClient) ListRoots(context.Context, *mcpschema.ListRootsRequestParams) (*mcpschema.ListRootsResult, *jsonrpc.Error) {
	return nil, notSupported(mcpschema.MethodRootsList)
}

func (*listingClient) CreateMessage(context.Context, *mcpschema.CreateMessageRequestParams) (*mcpschema.CreateMessageResult, *jsonrpc.Error) {
	return nil, notSupported(mcpschema.MethodSamplingCreateMessage)
}

func (*listingClient) Elicit(context.Context, *mcpschema.ElicitRequestParams) (*mcpschema.ElicitResult, *jsonrpc.Error) {
	return nil, notSupported(mcpschema.MethodElicitationCreate)
}

func (*listingClient) CreateUserInteraction(context.Context, *mcpschema.CreateUserInteractionRequestParams) (*mcpschema.CreateUserInteractionResult, *jsonrpc.Error) {
	return nil, notSupported(mcpschema.MethodInteractionCreate)
}

func notSupported(method string) *jsonrpc.Error {
	return jsonrpc.NewError(jsonrpc.MethodNotFound, method+" is not supported by the schema generator", nil)
}

func newListingClient() protoclient.Handler { return &listingClient{} }
