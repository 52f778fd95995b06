package auth

import (
	"context"
	"fmt"
	"sort"

	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"github.com/markbates/goth/providers/linkedin"
	"github.com/markbates/goth/providers/microsoftonline"
	"golang.org/x/oauth2"
)

type OAuthProvider struct {
	Name   string
	Config *oauth2.Config
}

func (p *OAuthProvider) GetAuthURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.Config.Exchange(ctx, code)
}

// OAuthRegistry échange les codes envoyés par le front et lit le profil via goth.
type OAuthRegistry struct {
	providers map[string]*OAuthProvider
}

// NewOAuthRegistry enregistre aussi les providers goth correspondants, utilisés
// par le flux de redirection gothic.
func NewOAuthRegistry(configs map[string]*oauth2.Config) *OAuthRegistry {
	r := &OAuthRegistry{providers: make(map[string]*OAuthProvider, len(configs))}
	var gothProviders []goth.Provider
	for name, cfg := range configs {
		r.providers[name] = &OAuthProvider{Name: name, Config: cfg}
		if p := gothProvider(name, cfg); p != nil {
			gothProviders = append(gothProviders, p)
		}
	}
	if len(gothProviders) > 0 {
		goth.UseProviders(gothProviders...)
	}
	return r
}

func gothProvider(name string, cfg *oauth2.Config) goth.Provider {
	switch name {
	case "google":
		return google.New(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL, "email", "profile")
	case "github":
		return github.New(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL, "read:user", "user:email")
	case "linkedin":
		return linkedin.New(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL)
	case "microsoftonline":
		return microsoftonline.New(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL)
	}
	return nil
}

func (r *OAuthRegistry) Get(name string) (*OAuthProvider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

func (r *OAuthRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile échange le code d'autorisation puis interroge l'API du fournisseur.
func (r *OAuthRegistry) Profile(ctx context.Context, name, code string) (goth.User, error) {
	p, ok := r.providers[name]
	if !ok {
		return goth.User{}, fmt.Errorf("provider %q non configuré", name)
	}
	tok, err := p.Exchange(ctx, code)
	if err != nil {
		return goth.User{}, fmt.Errorf("échange du code %s: %w", name, err)
	}
	provider, err := goth.GetProvider(name)
	if err != nil {
		return goth.User{}, err
	}
	sess, err := SessionFromToken(name, tok)
	if err != nil {
		return goth.User{}, err
	}
	return provider.FetchUser(sess)
}

// SessionFromToken construit la session goth propre à chaque fournisseur.
func SessionFromToken(name string, tok *oauth2.Token) (goth.Session, error) {
	switch name {
	case "google":
		return &google.Session{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken, ExpiresAt: tok.Expiry}, nil
	case "github":
		return &github.Session{AccessToken: tok.AccessToken}, nil
	case "linkedin":
		return &linkedin.Session{AccessToken: tok.AccessToken, ExpiresAt: tok.Expiry}, nil
	case "microsoftonline":
		return &microsoftonline.Session{AccessToken: tok.AccessToken, ExpiresAt: tok.Expiry}, nil
	}
	return nil, fmt.Errorf("provider %q non supporté", name)
}
