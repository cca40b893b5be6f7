package registry

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jfrog/gofrog/log"
	"github.com/jfrog/packagecloud-publisher-go/entities"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	DefaultUrl     = "https://packagecloud.io"
	apiPath        = "/api/v1"
	defaultTimeout = 10 * time.Minute

	distroVersionField = "package[distro_version_id]"
	packageFileField   = "package[package_file]"
	sourceFilesField   = "package[source_files][]"
)

// SupportedExtensions returns the file name suffixes of the package types packagecloud accepts.
func SupportedExtensions() []string {
	return []string{"deb", "dsc", "gem", "rpm"}
}

type ClientConfig struct {
	// Defaults to DefaultUrl.
	Url      string
	Username string
	Token    string
	// Defaults to a client with a ten minutes timeout.
	HttpClient *http.Client
	UserAgent  string
}

// Client talks to the packagecloud API v1.
type Client struct {
	baseUrl    string
	username   string
	token      string
	userAgent  string
	httpClient *http.Client
}

func NewClient(config ClientConfig) *Client {
	baseUrl := strings.TrimSuffix(config.Url, "/")
	if baseUrl == "" {
		baseUrl = DefaultUrl
	}
	httpClient := config.HttpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseUrl:    baseUrl,
		username:   config.Username,
		token:      config.Token,
		userAgent:  config.UserAgent,
		httpClient: httpClient,
	}
}

// PutPackage uploads pkg, with its source files, to its repository.
func (c *Client) PutPackage(ctx context.Context, pkg *entities.PackageRecord) error {
	const op = "upload"
	log.Debug(fmt.Sprintf("Uploading %s to %s", pkg.Filename, c.repositoryPath(pkg.Repository)))
	resp, err := c.postPackage(ctx, op, c.repositoryUrl(pkg.Repository, "packages.json"), pkg, true)
	if err != nil {
		return err
	}
	body, err := readBody(op, resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return statusError(op, resp.StatusCode, body)
	}
	return nil
}

// PackageContents returns the files a source package references. The package payload is read from its current position.
func (c *Client) PackageContents(ctx context.Context, pkg *entities.PackageRecord) ([]entities.PackageFile, error) {
	const op = "contents"
	resp, err := c.postPackage(ctx, op, c.repositoryUrl(pkg.Repository, "packages/contents.json"), pkg, false)
	if err != nil {
		return nil, err
	}
	body, err := readBody(op, resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError(op, resp.StatusCode, body)
	}
	files, err := parseContents(body)
	if err != nil {
		return nil, transportError(op, err)
	}
	return files, nil
}

// GetDistributions lists the distributions and versions packages can be published to.
func (c *Client) GetDistributions(ctx context.Context) (*entities.Distributions, error) {
	const op = "distributions"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+apiPath+"/distributions.json", nil)
	if err != nil {
		return nil, transportError(op, err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	body, err := readBody(op, resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(op, resp.StatusCode, body)
	}
	distributions, err := parseDistributions(body)
	if err != nil {
		return nil, transportError(op, err)
	}
	return distributions, nil
}

// repositoryPath accepts both "repo" and "user/repo". The first is resolved against the client's user.
func (c *Client) repositoryPath(repository string) string {
	if strings.Contains(repository, "/") {
		return repository
	}
	return c.username + "/" + repository
}

func (c *Client) repositoryUrl(repository, endpoint string) string {
	owner, name, _ := strings.Cut(c.repositoryPath(repository), "/")
	return fmt.Sprintf("%s%s/repos/%s/%s/%s", c.baseUrl, apiPath, url.PathEscape(owner), url.PathEscape(name), endpoint)
}

// postPackage streams pkg as a multipart form, the payload is never fully held in memory.
// The payload is no longer read once postPackage returns.
func (c *Client) postPackage(ctx context.Context, op, target string, pkg *entities.PackageRecord, withSourceFiles bool) (*http.Response, error) {
	bodyReader, bodyWriter := io.Pipe()
	form := multipart.NewWriter(bodyWriter)
	done := make(chan struct{})
	go func() {
		defer close(done)
		bodyWriter.CloseWithError(writePackageForm(form, pkg, withSourceFiles))
	}()
	// The response may arrive before the body is fully sent. Closing the reader stops the writer.
	stopWriter := func() {
		_ = bodyReader.Close()
		<-done
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bodyReader)
	if err != nil {
		stopWriter()
		return nil, transportError(op, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := c.do(req)
	stopWriter()
	if err != nil {
		return nil, transportError(op, err)
	}
	return resp, nil
}

func writePackageForm(form *multipart.Writer, pkg *entities.PackageRecord, withSourceFiles bool) error {
	if pkg.DistroVersionId != nil {
		if err := form.WriteField(distroVersionField, strconv.Itoa(*pkg.DistroVersionId)); err != nil {
			return err
		}
	}
	part, err := form.CreateFormFile(packageFileField, pkg.Filename)
	if err != nil {
		return err
	}
	if _, err = io.Copy(part, pkg.Payload); err != nil {
		return err
	}
	if withSourceFiles {
		names := maps.Keys(pkg.SourceFiles)
		slices.Sort(names)
		for _, name := range names {
			part, err = form.CreateFormFile(sourceFilesField, name)
			if err != nil {
				return err
			}
			if _, err = part.Write(pkg.SourceFiles[name]); err != nil {
				return err
			}
		}
	}
	return form.Close()
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	// packagecloud API tokens are sent as the basic auth user name, with an empty password.
	req.SetBasicAuth(c.token, "")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}

func readBody(op string, resp *http.Response) (body []byte, err error) {
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = transportError(op, closeErr)
		}
	}()
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(op, err)
	}
	return body, nil
}
