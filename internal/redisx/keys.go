package redisx

import "time"

const (
	// Idempotency create order: idem:order:create:{user_id}:{Idempotency-Key} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%s:%s"
	// nilai sementara selama order masih dibuat
	IdemPending = "pending"

	// Cache status order: order_status:{order_id} -> {"status": "...", "updated_at": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Cooldown kirim ulang OTP: otp:cooldown:{email}
	KeyOTPCooldown = "otp:cooldown:%s"

	// Cache dashboard admin (satu key, isinya JSON dashboard)
	KeyAnalyticsDashboard = "analytics:dashboard"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLIdemPending = 30 * time.Second
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
	TTLOTPCooldown = 60 * time.Second
	TTLAnalytics   = 60 * time.Second
)
