// Package detectkit wires a detection client from configuration.
//
// A Client bundles the session store, the quota guard, the detection router,
// the account dashboard and the share linker over one storage backend and one
// API base URL:
//
//	var cfg detectkit.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
//	c, err := detectkit.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer c.Close(context.Background())
//
//	if err := c.EnsureSession(ctx); err != nil {
//		// The session could not be provisioned; calls fall back to the
//		// anonymous backend.
//	}
//
//	res, err := c.Detector.SubmitByURL(ctx, "https://example.com/cat.png", visitorID)
//	if detector.IsQuotaExceeded(err) {
//		...
//	}
//
// Storage backends are selected with DETECT_STORAGE: "sqlite" (default, a
// local file), "memory", "redis", "postgres" or "mongo". Each backend reads its
// own connection settings (REDIS_*, PG_*, MONGODB_*).
package detectkit
