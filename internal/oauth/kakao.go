package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/kakao"

	"github.com/avasilenko/authgate-server/internal/config"
	"github.com/avasilenko/authgate-server/internal/model"
)

const kakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"

// Kakao authenticates users through Kakao's OAuth2 flow and fetches the
// user payload from the Kakao API with the exchanged access token.
type Kakao struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewKakao(cfg config.OAuthClient) *Kakao {
	return &Kakao{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     kakao.Endpoint,
			Scopes:       []string{"profile_nickname", "profile_image", "account_email"},
		},
		userInfoURL: kakaoUserInfoURL,
	}
}

func (k *Kakao) Provider() model.Provider {
	return model.ProviderKakao
}

func (k *Kakao) AuthURL(state string) string {
	return k.config.AuthCodeURL(state)
}

func (k *Kakao) FetchUser(ctx context.Context, code string) (map[string]any, error) {
	token, err := k.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}

	resp, err := k.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	// UseNumber keeps the numeric Kakao user id exact.
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var attributes map[string]any
	if err := decoder.Decode(&attributes); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	return attributes, nil
}
