package event

const DigestEmailDestination string = "digest_email_dispatch"
const DigestEmailConsumerDigest string = "digest_email_dispatch_digest"

type DigestEmailMessage struct {
	DeliveryLogID int64  `json:"delivery_log_id"`
	UserID        int64  `json:"user_id"`
	Email         string `json:"email"`
	Subject       string `json:"subject"`
	HTMLBody      string `json:"html_body"`
}
