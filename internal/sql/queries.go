// Package sql embeds the schema migrations and the statements executed by
// the refresh pipeline and load registry.
package sql

import "embed"

// Migrations holds the schema DDL, applied in filename order.
//
//go:embed migrations
var Migrations embed.FS

//go:embed queries/select_referrals.sql
var SelectReferrals string

//go:embed queries/select_transactions.sql
var SelectTransactions string

//go:embed queries/select_denials.sql
var SelectDenials string

//go:embed queries/select_crosswalk.sql
var SelectCrosswalk string

//go:embed queries/truncate_derived.sql
var TruncateDerived string

//go:embed queries/analyze_derived.sql
var AnalyzeDerived string

//go:embed queries/register_refresh_run.sql
var RegisterRefreshRun string

//go:embed queries/update_refresh_status.sql
var UpdateRefreshStatus string

//go:embed queries/finish_refresh_run.sql
var FinishRefreshRun string

//go:embed queries/export_episodes.sql
var ExportEpisodes string

//go:embed queries/register_raw_load.sql
var RegisterRawLoad string

//go:embed queries/lookup_raw_load.sql
var LookupRawLoad string
