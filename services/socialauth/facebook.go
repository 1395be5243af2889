package socialauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// VerifyFacebookToken checks an access token against the Graph debug_token
// endpoint, then fetches the user's email and name.
func VerifyFacebookToken(accessToken, appID, appSecret string) (*UserInfo, error) {
	appAccessToken := fmt.Sprintf("%s|%s", appID, appSecret)

	verifyURL := fmt.Sprintf("https://graph.facebook.com/debug_token?input_token=%s&access_token=%s",
		url.QueryEscape(accessToken), url.QueryEscape(appAccessToken))
	resp, err := http.Get(verifyURL)
	if err != nil {
		return nil, fmt.Errorf("failed to verify Facebook token: %w", err)
	}
	defer resp.Body.Close()

	var verifyResult struct {
		Data struct {
			AppID   string `json:"app_id"`
			IsValid bool   `json:"is_valid"`
			UserID  string `json:"user_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&verifyResult); err != nil {
		return nil, fmt.Errorf("failed to decode Facebook verify response: %w", err)
	}
	if !verifyResult.Data.IsValid {
		return nil, errors.New("invalid Facebook token")
	}
	if verifyResult.Data.AppID != appID {
		return nil, errors.New("token was issued for a different app")
	}

	infoURL := fmt.Sprintf("https://graph.facebook.com/%s?fields=id,name,email&access_token=%s",
		verifyResult.Data.UserID, url.QueryEscape(accessToken))
	infoResp, err := http.Get(infoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Facebook user info: %w", err)
	}
	defer infoResp.Body.Close()

	var info struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(infoResp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode Facebook user info: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("facebook account has no email, cannot sign in")
	}

	return &UserInfo{Email: strings.ToLower(info.Email), Name: info.Name}, nil
}
