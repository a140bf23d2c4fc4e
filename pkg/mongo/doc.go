// Package mongo connects to MongoDB with mongo-driver/v2.
//
// New applies pool and retry settings from Config (MONGODB_* env vars) and
// pings before returning. NewWithDatabase returns the database that
// mongostore keeps its tenants_storage collection in.
package mongo
