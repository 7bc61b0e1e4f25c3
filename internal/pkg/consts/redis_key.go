package consts

const (
	RateLimitRoastKey = "ratelimit:roast"
)
