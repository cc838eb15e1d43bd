package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setDeliveryEnv(t *testing.T, apiURL string) {
	t.Helper()
	t.Setenv("DELIVERY_PROVIDER", "emailjs")
	t.Setenv("EMAILJS_API_URL", apiURL)
	t.Setenv("CONTACT_SERVICE_ID", "service_abc")
	t.Setenv("CONTACT_TEMPLATE_ID_ADMIN", "template_admin")
	t.Setenv("CONTACT_TEMPLATE_ID_AUTOREPLY", "template_reply")
	t.Setenv("CONTACT_PUBLIC_KEY", "pk_123")
}

func runCmd(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheck_Complete(t *testing.T) {
	setDeliveryEnv(t, "http://127.0.0.1:1")

	out, err := runCmd("check")

	require.NoError(t, err)
	assert.Contains(t, out, "provider: emailjs")
	assert.Contains(t, out, "delivery configuration complete")
}

func TestCheck_MissingKey(t *testing.T) {
	setDeliveryEnv(t, "http://127.0.0.1:1")
	t.Setenv("CONTACT_PUBLIC_KEY", "")

	_, err := runCmd("check")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONTACT_PUBLIC_KEY")
}

func TestSend(t *testing.T) {
	var mu sync.Mutex
	var templates []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TemplateID string `json:"template_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		templates = append(templates, body.TemplateID)
		mu.Unlock()
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()
	setDeliveryEnv(t, srv.URL)

	out, err := runCmd("send", "--name", "Ann", "--email", "ann@x.com", "--message", "Hi")

	require.NoError(t, err)
	assert.Contains(t, out, "sent")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"template_admin", "template_reply"}, templates)
}

func TestSend_ProviderRejectionShowsDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The public key is invalid", http.StatusBadRequest)
	}))
	defer srv.Close()
	setDeliveryEnv(t, srv.URL)

	_, err := runCmd("send", "--name", "Ann", "--email", "ann@x.com", "--message", "Hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "The public key is invalid")
}

func TestSend_RequiresFlags(t *testing.T) {
	setDeliveryEnv(t, "http://127.0.0.1:1")

	_, err := runCmd("send", "--name", "Ann")
	assert.Error(t, err)
}
