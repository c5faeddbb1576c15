// Package core provides the business logic for bulk product imports.
//
// This package holds all import logic independent of any transport or
// storage. Web handlers, the catalogctl CLI and tests drive it through
// [Service] and the store interfaces in store.go.
//
// # Pipeline
//
// One import run flows through these stages:
//
//  1. [ParseSource] reads a CSV or XLSX file into normalized rows and
//     MISSING_FIELD / INVALID_PRICE issues.
//  2. [Service] loads the mapping rules of the requested version, the
//     curated category ids and the SKUs already in the catalog.
//  3. [ValidateRows] resolves each row's category with [ResolveCategory]
//     and rejects duplicates and unmapped rows.
//  4. [UpsertEngine] writes accepted rows in chunks, trying a batch insert
//     first and falling back to row-by-row inserts.
//  5. [StagingRecorder] writes the batch summary, every raw row and every
//     issue for later review.
//
// Every row of the file ends up counted exactly once as created, updated,
// skipped or errored. Duplicates are skips; every other issue is an error.
//
// # Category Mapping
//
// Rules match a normalized (department, category) pair. Either side may be
// the wildcard "*". Priorities follow fixed bands:
//
//	30  exact department and category
//	20  category only (department "*")
//	10  department only (category "*")
//
// The highest priority wins; ties go to the first rule loaded.
//
// # Error Handling
//
// Row problems never abort a run; they are reported as [RowIssue] values.
// Whole-request failures are errors, mapped to Spanish user messages with
// support codes by [MapError]:
//
//   - IMP001-IMP005: Import pipeline (rules, concurrency, reconciliation)
//   - FILE001-FILE006: File errors (size, type, encoding, workbook)
//   - DB001-DB006: Database errors (constraints, connections, timeouts)
//   - REQ001-REQ002: Request cancellation and deadlines
//
// # Retention
//
// Raw staging rows are purged by [Service.StartRetentionScheduler] once
// their batch is older than the configured window. Batch summaries and
// issues are kept.
package core
