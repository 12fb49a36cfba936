package classifier_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/attendance-management/internal/classifier"
)

func TestClassifier(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Classifier Suite")
}

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		respond  func(w http.ResponseWriter, r *http.Request)
		client   *classifier.Client
		lastBody map[string]string
	)

	BeforeEach(func() {
		lastBody = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&lastBody)
			respond(w, r)
		}))
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		client = classifier.NewClient(classifier.Config{
			APIURL:         server.URL,
			APIKey:         "test-key",
			Model:          "intent-v1",
			RequestTimeout: time.Second,
		}, logger)
	})

	AfterEach(func() {
		server.Close()
	})

	It("returns the decoded intent and sends model, text and bearer key", func() {
		var authHeader string
		respond = func(w http.ResponseWriter, r *http.Request) {
			authHeader = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(classifier.Intent{
				Kind:      classifier.KindLeaveRequest,
				LeaveType: "sick",
				Dates:     []string{"2025-07-01"},
			})
		}

		intent := client.Classify(context.Background(), "sick leave tomorrow")

		Expect(intent.Kind).To(Equal(classifier.KindLeaveRequest))
		Expect(intent.LeaveType).To(Equal("sick"))
		Expect(intent.Dates).To(Equal([]string{"2025-07-01"}))
		Expect(authHeader).To(Equal("Bearer test-key"))
		Expect(lastBody["model"]).To(Equal("intent-v1"))
		Expect(lastBody["text"]).To(Equal("sick leave tomorrow"))
	})

	It("degrades an unknown kind to other", func() {
		respond = func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"kind": "reboot_the_office"})
		}

		intent := client.Classify(context.Background(), "anything")

		Expect(intent.Kind).To(Equal(classifier.KindOther))
	})

	It("degrades a server error to other", func() {
		respond = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}

		intent := client.Classify(context.Background(), "anything")

		Expect(intent.Kind).To(Equal(classifier.KindOther))
	})

	It("degrades malformed JSON to other", func() {
		respond = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}

		intent := client.Classify(context.Background(), "anything")

		Expect(intent.Kind).To(Equal(classifier.KindOther))
	})

	It("degrades an unreachable endpoint to other", func() {
		server.Close()

		intent := client.Classify(context.Background(), "anything")

		Expect(intent.Kind).To(Equal(classifier.KindOther))
	})
})
