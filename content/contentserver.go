package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	contentserverclient "github.com/foomo/contentserver/client"
	contentserver "github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"
	"github.com/google/uuid"
)

// ContentServerSettings configures loading a tree from a foomo contentserver.
type ContentServerSettings struct {
	ServerURL string
	Env       *requests.Env
	Database  string
	Language  string
	RootPath  string
	MimeTypes []string
}

// LoadFromContentServer builds a Memory tree from a contentserver export.
// Item ids are derived deterministically from the contentserver node ids, so
// repeated loads of the same tree yield the same references.
func LoadFromContentServer(ctx context.Context, httpClient *http.Client, settings ContentServerSettings) (*Memory, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	client := contentserverclient.New(
		contentserverclient.NewHTTPTransport(
			settings.ServerURL,
			contentserverclient.HTTPTransportWithHTTPClient(httpClient),
		))

	site, err := client.GetContent(ctx, &requests.Content{
		URI:   settings.RootPath,
		Env:   settings.Env,
		Nodes: map[string]*requests.Node{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get content for %q: %w", settings.RootPath, err)
	}
	if site.Item == nil {
		return nil, errors.New("content root not found")
	}

	nodes, err := client.GetNodes(ctx, settings.Env, map[string]*requests.Node{
		site.Item.ID: {
			ID:        site.Item.ID,
			MimeTypes: settings.MimeTypes,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get nodes for %q: %w", site.Item.ID, err)
	}
	rootNode, ok := nodes[site.Item.ID]
	if !ok {
		return nil, errors.New("content root node not found")
	}

	memory := NewMemory(settings.Database, settings.Language)
	addNode(memory, memory.RootID(), rootNode)
	return memory, nil
}

// addNode inserts a contentserver node and its subtree into the tree.
func addNode(memory *Memory, parentID uuid.UUID, node *contentserver.Node) {
	if node == nil || node.Item == nil {
		return
	}
	item := memory.AddItem(ItemSpec{
		ID:              itemID(node.Item.ID),
		Parent:          parentID,
		Name:            node.Item.Name,
		Languages:       []string{memory.language},
		HasPresentation: node.Item.URI != "",
	})
	if item == nil {
		return
	}
	for _, childID := range node.Index {
		addNode(memory, item.ID, node.Nodes[childID])
	}
}

// itemID derives a stable uuid from a contentserver node id.
func itemID(id string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id))
}
