package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/pass-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("should match sentinels through wrapping and copies", func() {
		err := fmt.Errorf("deciding: %w", internal.ErrInvalidPassStatus.WithCause(errors.New("row locked")))

		Expect(errors.Is(err, internal.ErrInvalidPassStatus)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrPassNotFound)).To(BeFalse())

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusConflict))
		Expect(internal.ErrInvalidPassStatus.Cause).To(BeNil())
	})

	DescribeTable("status codes",
		func(err *internal.AppError, status int) {
			Expect(err.StatusCode).To(Equal(status))
		},
		Entry("validation", internal.NewValidationError("bad", internal.ErrCodeValidationFailed), http.StatusBadRequest),
		Entry("unauthorized", internal.ErrMissingToken, http.StatusUnauthorized),
		Entry("forbidden", internal.ErrAdminRequired, http.StatusForbidden),
		Entry("not found", internal.ErrPassNotFound, http.StatusNotFound),
		Entry("conflict", internal.ErrUsernameTaken, http.StatusConflict),
		Entry("invalid state", internal.ErrInvalidPassStatus, http.StatusConflict),
		Entry("internal", internal.NewInternalError("boom", nil), http.StatusInternalServerError),
	)

	It("should serialize into the error envelope without the cause", func() {
		appErr := internal.NewValidationFieldError("reason", "reason is required", internal.ErrCodeReasonRequired).
			WithCause(errors.New("secret detail"))

		status, body := appErr.ToHTTPResponse()
		Expect(status).To(Equal(http.StatusBadRequest))

		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).NotTo(ContainSubstring("secret detail"))

		var decoded map[string]map[string]interface{}
		Expect(json.Unmarshal(raw, &decoded)).To(Succeed())
		Expect(decoded["error"]).To(HaveKeyWithValue("type", "VALIDATION_ERROR"))
		Expect(decoded["error"]).To(HaveKeyWithValue("code", "VALIDATION_FAILED"))
		Expect(decoded["error"]["details"]).To(HaveKeyWithValue("errors", ContainElement(HaveKeyWithValue("code", "REJECTION_REASON_REQUIRED"))))
	})

	It("should report the first field message from Error", func() {
		appErr := internal.NewValidationFieldError("purpose", "purpose is required", internal.ErrCodeValidationFailed)
		Expect(appErr.Error()).To(Equal("purpose is required"))
	})
})
