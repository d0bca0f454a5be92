package sheet

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Credentials is the content of a Google credentials file: either a
// service account key or an OAuth2 client configuration. Credentials
// sourced from the environment exist in memory only and are never written
// to disk.
type Credentials struct {
	bytes  []byte
	tokens string
}

// CredentialsFromFile reads a credentials file. For OAuth2 client
// configurations the cached token lives beside the file as
// '<name>.tokens'.
func CredentialsFromFile(path string) (*Credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dir, file := filepath.Split(path)
	name := strings.TrimSuffix(file, filepath.Ext(file))

	return &Credentials{
		bytes:  b,
		tokens: filepath.Join(dir, fmt.Sprintf("%s.tokens", name)),
	}, nil
}

// CredentialsFromEnv accepts the credential JSON itself, raw or base64
// encoded (the usual shape of a CI secret). The decoded key stays in
// memory.
func CredentialsFromEnv(v string) (*Credentials, error) {
	s := strings.TrimSpace(v)

	if strings.HasPrefix(s, "{") {
		return &Credentials{bytes: []byte(s)}, nil
	}

	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return &Credentials{bytes: b}, nil
	}

	return nil, fmt.Errorf("credentials are neither JSON nor base64 encoded JSON")
}

// IsServiceAccount reports whether the credentials are a service account
// key (no interactive authorisation required).
func (c *Credentials) IsServiceAccount() bool {
	var kind struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(c.bytes, &kind); err != nil {
		return false
	}

	return kind.Type == "service_account"
}

// client builds an authorised HTTP client for the requested scopes:
// service account keys via a JWT config, OAuth2 client configurations via
// a previously cached token.
func (c *Credentials) client(ctx context.Context, scopes ...string) (*http.Client, error) {
	if c.IsServiceAccount() {
		config, err := google.JWTConfigFromJSON(c.bytes, scopes...)
		if err != nil {
			return nil, err
		}

		return config.Client(ctx), nil
	}

	config, err := google.ConfigFromJSON(c.bytes, scopes...)
	if err != nil {
		return nil, err
	}

	if c.tokens == "" {
		return nil, fmt.Errorf("OAuth2 client credentials require a cached token - use a --credentials file")
	}

	token, err := tokenFromFile(c.tokens)
	if err != nil {
		return nil, fmt.Errorf("no cached OAuth2 token (%v) - run 'authorise' first", err)
	}

	return config.Client(ctx, token), nil
}

// Authorise runs the interactive OAuth2 flow for a client-configuration
// credentials file and caches the token beside it. Returns false without
// error for service account keys, which need no authorisation.
func Authorise(path string, scopes ...string) (bool, error) {
	c, err := CredentialsFromFile(path)
	if err != nil {
		return false, err
	}

	if c.IsServiceAccount() {
		return false, nil
	}

	config, err := google.ConfigFromJSON(c.bytes, scopes...)
	if err != nil {
		return false, err
	}

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return false, fmt.Errorf("unable to read authorization code (%v)", err)
	}

	token, err := config.Exchange(context.TODO(), code)
	if err != nil {
		return false, fmt.Errorf("unable to retrieve token from web (%v)", err)
	}

	if err := saveToken(c.tokens, token); err != nil {
		return false, err
	}

	return true, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	token := oauth2.Token{}
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
