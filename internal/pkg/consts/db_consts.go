package consts

const (
	ApplicationsCollection        = "applications"
	BorrowersCollection           = "borrowers"
	PaymentsCollection            = "payments"
	CountersCollection            = "counters"
	NotificationHistoryCollection = "notification_history"
)

// Counter names under the counters collection.
const (
	ApplicationCounter = "applications"
	BorrowerCounter    = "borrowers"
)

const DateLayout = "2006-01-02"
