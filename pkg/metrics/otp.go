package metrics

import "github.com/prometheus/client_golang/prometheus"

// OTPMetrics counts verification codes issued and how verification attempts end.
type OTPMetrics struct {
	issued   prometheus.Counter
	verified *prometheus.CounterVec
	delivery *prometheus.CounterVec
}

// NewOTPMetrics registers the OTP metrics on the provided registerer.
func NewOTPMetrics(reg prometheus.Registerer) *OTPMetrics {
	if reg == nil {
		return &OTPMetrics{}
	}
	issued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "otp_issued_total",
		Help: "Verification codes issued.",
	})
	verified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_verifications_total",
		Help: "Verification attempts by result.",
	}, []string{"result"})
	delivery := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_delivery_total",
		Help: "Verification email delivery attempts by result.",
	}, []string{"result"})
	reg.MustRegister(issued, verified, delivery)
	return &OTPMetrics{issued: issued, verified: verified, delivery: delivery}
}

func (o *OTPMetrics) IncIssued() {
	if o == nil || o.issued == nil {
		return
	}
	o.issued.Inc()
}

// IncVerification records a verify result such as "ok", "not_found", "mismatch" or "expired".
func (o *OTPMetrics) IncVerification(result string) {
	if o == nil || o.verified == nil {
		return
	}
	o.verified.WithLabelValues(normalizeLabel(result)).Inc()
}

func (o *OTPMetrics) IncDelivery(result string) {
	if o == nil || o.delivery == nil {
		return
	}
	o.delivery.WithLabelValues(normalizeLabel(result)).Inc()
}
