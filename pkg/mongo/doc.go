// Package mongo connects to MongoDB and exposes a collection-backed
// kvstore.Storage.
//
// New dials with retry and verifies the connection with a ping. Storage keeps
// one document per key in a collection:
//
//	{ "_id": "<key>", "value": "<string>", "updated_at": <date> }
//
// # Usage
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, cfg.Database)
//	if err != nil {
//		return err
//	}
//	store := mongo.NewStorage(db.Collection(cfg.Collection))
//
// Incr runs an upserting pipeline update, so it is atomic per key and keeps
// the value stored as a decimal string like every other backend.
package mongo
