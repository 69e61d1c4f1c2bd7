// Package rfqtrack tracks RFQ (Request for Quotation) exchanges stored on a
// shared project file tree. It crawls project folders, classifies supplier and
// contractor folders across the known directory layouts, versions each sent or
// received submission by content hash, and serves the stored history for
// search and reporting.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, fs/, prometheus/).
package rfqtrack
