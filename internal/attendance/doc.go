// Package attendance implements the check-in reconciliation pipeline.
//
// The pipeline turns heterogeneous survey-tool exports (Microsoft Forms,
// Google Forms and friends) into one canonical student-day attendance fact
// table and derives summary reports from it. Stages, in order:
//
//  1. Schema normalization: map each file's column names onto the canonical
//     schema (timestamp, email, display name).
//  2. Identity resolution: derive a stable, normalized student key per row
//     from email or, under the name-fallback policy, from the display name.
//  3. Validation: reject files whose rows cannot produce a usable identity.
//  4. Deduplication: collapse same-day check-ins per student to the earliest
//     submission of the day.
//  5. Aggregation: fold the deduplicated set into the summary, daily,
//     per-day, most-recent and status report tables.
//
// Per-file normalization runs concurrently; everything downstream of the
// merge is a single synchronous computation. The pipeline is a pure function
// of (input tables, options): no ambient state, no persistence. Serialization
// of the result tables is the exporter package's job.
package attendance
