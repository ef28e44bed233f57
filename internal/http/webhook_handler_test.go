package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Notifuse/notifuse/internal/domain"
	domainmocks "github.com/Notifuse/notifuse/internal/domain/mocks"
	"github.com/Notifuse/notifuse/internal/service/reconciler"
	"github.com/Notifuse/notifuse/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWebhookHandler(ctrl *gomock.Controller) (*WebhookHandler, *domainmocks.MockWebhookCommitter, *domainmocks.MockUserRepository, *domainmocks.MockDeliveryReceiptRepository, *domainmocks.MockMessageRepository) {
	committer := domainmocks.NewMockWebhookCommitter(ctrl)
	users := domainmocks.NewMockUserRepository(ctrl)
	receipts := domainmocks.NewMockDeliveryReceiptRepository(ctrl)
	messages := domainmocks.NewMockMessageRepository(ctrl)

	rec := reconciler.New(messages, receipts, logger.NewLogger(), reconciler.DefaultConfig())
	h := NewWebhookHandler(committer, users, receipts, rec, logger.NewLogger())
	return h, committer, users, receipts, messages
}

func postForm(t *testing.T, handler http.HandlerFunc, target string, form map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	values := strings.Builder{}
	first := true
	for k, v := range form {
		if !first {
			values.WriteByte('&')
		}
		first = false
		values.WriteString(k)
		values.WriteByte('=')
		values.WriteString(v)
	}

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.String()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestWebhookHandler_Inbound_PlainMessageCommitsNoConsentChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, committer, _, _, _ := newTestWebhookHandler(ctrl)

	committer.EXPECT().CommitInbound(gomock.Any(), gomock.Any(), (*domain.ConsentState)(nil), domain.MapOfAny(nil)).Return(nil)

	rr := postForm(t, h.handleInbound, "/webhooks/inbound", map[string]string{
		"MessageSid": "SM1",
		"From":       "whatsapp:+14155550001",
		"To":         "+14155559999",
		"Body":       "hello there",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWebhookHandler_Inbound_StopKeywordAppliesConsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, committer, users, _, _ := newTestWebhookHandler(ctrl)

	users.EXPECT().GetUserByPhone(gomock.Any(), "+14155550001").
		Return(&domain.User{Phone: "+14155550001", ConsentState: domain.ConsentStateOptIn}, nil)

	stop := domain.ConsentStateStop
	committer.EXPECT().CommitInbound(gomock.Any(), gomock.Any(), &stop, domain.MapOfAny(nil)).Return(nil)

	rr := postForm(t, h.handleInbound, "/webhooks/inbound", map[string]string{
		"MessageSid": "SM2",
		"From":       "whatsapp:+14155550001",
		"To":         "+14155559999",
		"Body":       "STOP",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWebhookHandler_Inbound_LanguageKeywordCommitsAttribute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, committer, _, _, _ := newTestWebhookHandler(ctrl)

	committer.EXPECT().
		CommitInbound(gomock.Any(), gomock.Any(), (*domain.ConsentState)(nil), domain.MapOfAny{"language": "ta"}).
		Return(nil)

	rr := postForm(t, h.handleInbound, "/webhooks/inbound", map[string]string{
		"MessageSid": "SM5",
		"From":       "whatsapp:+14155550001",
		"To":         "+14155559999",
		"Body":       "please reply in tamil",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWebhookHandler_Inbound_UnknownUserDefaultsToOptIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, committer, users, _, _ := newTestWebhookHandler(ctrl)

	users.EXPECT().GetUserByPhone(gomock.Any(), "+14155550001").
		Return(nil, &domain.NotFoundError{Entity: "User", ID: "+14155550001"})

	stop := domain.ConsentStateStop
	committer.EXPECT().CommitInbound(gomock.Any(), gomock.Any(), &stop, domain.MapOfAny(nil)).Return(nil)

	rr := postForm(t, h.handleInbound, "/webhooks/inbound", map[string]string{
		"MessageSid": "SM3",
		"From":       "whatsapp:+14155550001",
		"To":         "+14155559999",
		"Body":       "STOP",
	})

	assert.Equal(t, http.StatusOK, rr.Code, "a STOP from an unknown user is still a real state change, opt-in -> stop")
}

func TestWebhookHandler_Inbound_InvalidPhoneDroppedWithout500(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, _, _ := newTestWebhookHandler(ctrl)

	rr := postForm(t, h.handleInbound, "/webhooks/inbound", map[string]string{
		"MessageSid": "SM4",
		"From":       "not-a-phone",
		"Body":       "hello",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWebhookHandler_Status_ReconcilesSynchronously(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, receipts, messages := newTestWebhookHandler(ctrl)

	message := &domain.Message{ID: "m1", CampaignID: "c1", Phone: "+14155550001", Status: domain.MessageStatusSent}

	receipts.EXPECT().InsertRaw(gomock.Any(), gomock.Any()).Return(nil)
	messages.EXPECT().GetByProviderSID(gomock.Any(), "SM1").Return(message, nil)
	messages.EXPECT().UpdateStatus(gomock.Any(), "m1", domain.MessageStatusDelivered, (*string)(nil), (*string)(nil), gomock.Any()).Return(nil)
	receipts.EXPECT().MarkReconciled(gomock.Any(), gomock.Any()).Return(nil)

	rr := postForm(t, h.handleStatus, "/webhooks/status", map[string]string{
		"MessageSid":    "SM1",
		"MessageStatus": "delivered",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWebhookHandler_Status_MissingFieldsDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, _, _ := newTestWebhookHandler(ctrl)

	rr := postForm(t, h.handleStatus, "/webhooks/status", map[string]string{
		"MessageSid": "SM1",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWebhookHandler_RegisterRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, committer, _, receipts, messages := newTestWebhookHandler(ctrl)
	committer.EXPECT().CommitInbound(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	receipts.EXPECT().InsertRaw(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	messages.EXPECT().GetByProviderSID(gomock.Any(), gomock.Any()).
		Return(nil, &domain.NotFoundError{Entity: "Message", ID: "x"}).AnyTimes()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/inbound", strings.NewReader("MessageSid=SM1&From=%2B14155550001&Body=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}
