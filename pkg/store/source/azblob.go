package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

const SchemeAzureBlob = "azblob"

// AzureBlobLocation is a parsed azblob://account/container/blob URI.
type AzureBlobLocation struct {
	Account   string
	Container string
	Blob      string
}

func (l AzureBlobLocation) ServiceURL() string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/", l.Account)
}

func ParseAzureBlobLocation(location string) (AzureBlobLocation, error) {
	u, err := url.Parse(location)
	if err != nil {
		return AzureBlobLocation{}, fmt.Errorf("invalid location %q: %w", location, err)
	}
	container, blob, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if u.Host == "" || container == "" || blob == "" {
		return AzureBlobLocation{}, fmt.Errorf("location %q must look like azblob://<account>/<container>/<blob>", location)
	}
	return AzureBlobLocation{Account: u.Host, Container: container, Blob: blob}, nil
}

// OpenAzureBlob streams azblob://account/container/blob using the default Azure
// credential chain (environment, managed identity, Azure CLI).
func OpenAzureBlob(ctx context.Context, location string) (io.ReadCloser, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return NewAzureBlobOpener(cred)(ctx, location)
}

func NewAzureBlobOpener(cred azcore.TokenCredential) Opener {
	return func(ctx context.Context, location string) (io.ReadCloser, error) {
		loc, err := ParseAzureBlobLocation(location)
		if err != nil {
			return nil, err
		}

		client, err := azblob.NewClient(loc.ServiceURL(), cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}

		resp, err := client.DownloadStream(ctx, loc.Container, loc.Blob, nil)
		if err != nil {
			if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
			}
			return nil, fmt.Errorf("download %s: %w", location, err)
		}
		return resp.Body, nil
	}
}
