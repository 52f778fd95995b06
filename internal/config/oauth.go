package config

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/linkedin"
	"golang.org/x/oauth2/microsoft"
)

// OAuthConfigs retourne une config x/oauth2 par fournisseur configuré.
func (c *Config) OAuthConfigs() map[string]*oauth2.Config {
	callback := func(name string) string { return c.BaseURL + "/auth/" + name + "/callback" }
	out := make(map[string]*oauth2.Config)

	if c.OAuth.GoogleClientID != "" && c.OAuth.GoogleClientSecret != "" {
		out["google"] = &oauth2.Config{
			RedirectURL:  callback("google"),
			ClientID:     c.OAuth.GoogleClientID,
			ClientSecret: c.OAuth.GoogleClientSecret,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}
	if c.OAuth.GitHubClientID != "" && c.OAuth.GitHubClientSecret != "" {
		out["github"] = &oauth2.Config{
			RedirectURL:  callback("github"),
			ClientID:     c.OAuth.GitHubClientID,
			ClientSecret: c.OAuth.GitHubClientSecret,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}
	}
	if c.OAuth.LinkedInClientID != "" && c.OAuth.LinkedInClientSecret != "" {
		out["linkedin"] = &oauth2.Config{
			RedirectURL:  callback("linkedin"),
			ClientID:     c.OAuth.LinkedInClientID,
			ClientSecret: c.OAuth.LinkedInClientSecret,
			Scopes:       []string{"r_liteprofile", "r_emailaddress"},
			Endpoint:     linkedin.Endpoint,
		}
	}
	if c.OAuth.MicrosoftClientID != "" && c.OAuth.MicrosoftClientSecret != "" {
		out["microsoftonline"] = &oauth2.Config{
			RedirectURL:  callback("microsoftonline"),
			ClientID:     c.OAuth.MicrosoftClientID,
			ClientSecret: c.OAuth.MicrosoftClientSecret,
			Scopes:       []string{"openid", "offline_access", "User.Read"},
			Endpoint:     microsoft.AzureADEndpoint("common"),
		}
	}
	return out
}
