// File: internal/stages/roles.go
package stages

import (
	b "github.com/xkilldash9x/courier-cli/internal/browser"
	s "github.com/xkilldash9x/courier-cli/internal/selector"
)

// Phrases the listing renders instead of rows when a search has no hits.
var noDataPhrases = []string{"No data", "No records found", "ไม่พบข้อมูล"}

// Pagination texts that mean the search returned nothing.
var zeroResultPhrases = []string{"0 to 0 of 0", "0 of 0", "Currently showing 0 to 0 of"}

// Role catalog for the trading agreement application. Candidates are tried
// in order; new UI variants are added here.
var (
	RoleLoggedIn = s.Role{Name: "logged-in indicator", Candidates: []s.Candidate{
		s.C(b.Text("Trading Agreement")),
		s.C(b.Text("TA Summary")),
		s.C(b.Text("Logout")),
		s.C(b.Text("ออกจากระบบ")),
		s.C(b.CSS(".main-menu")),
		s.C(b.CSS(".dashboard")),
	}}

	RoleLoginStart = s.Role{Name: "SSO login button", Candidates: []s.Candidate{
		s.C(b.CSS(`div[role="button"]`), s.TextContains("SSO Login")),
		s.C(b.CSS(".mx-name-container24")),
		s.C(b.CSS(`[role="button"]`), s.TextContains("Login")),
		s.C(b.Text("SSO Login")),
	}}

	RoleLoginForm = s.Role{Name: "login form", Candidates: []s.Candidate{
		s.C(b.CSS(`form input[type="password"]`)),
		s.C(b.CSS(`input[type="password"]`)),
	}}

	RoleUsername = s.Role{Name: "username input", Candidates: []s.Candidate{
		s.C(b.CSS(`input[name*="username"]`)),
		s.C(b.CSS(`input[name*="user"]`)),
		s.C(b.CSS(`input[type="email"]`)),
		s.C(b.CSS(`input[type="text"]`)),
	}}

	RolePassword = s.Role{Name: "password input", Candidates: []s.Candidate{
		s.C(b.CSS(`input[type="password"]`)),
	}}

	RoleLoginSubmit = s.Role{Name: "login submit", Candidates: []s.Candidate{
		s.C(b.CSS(`button[type="submit"]`)),
		s.C(b.CSS(`input[type="submit"]`)),
		s.C(b.CSS("button"), s.AnyOf(s.TextContains("Login"), s.TextContains("Sign in"), s.TextContains("เข้าสู่ระบบ"))),
	}}

	RoleMenuSetup = s.Role{Name: "Setup menu", Candidates: []s.Candidate{
		s.C(b.CSS("a.mx-link, .mx-link"), s.TextEquals("Setup")),
		s.C(b.CSS("a"), s.TextEquals("Setup")),
		s.C(b.CSS(`[title*="Setup"]`)),
		s.C(b.Text("Setup")),
	}}

	RoleMenuSummary = s.Role{Name: "Summary menu", Candidates: []s.Candidate{
		s.C(b.CSS("a.mx-link, .mx-link"), s.TextContains("Summary")),
		s.C(b.CSS("a"), s.TextContains("TA Summary")),
		s.C(b.CSS(`[title*="Summary"]`)),
		s.C(b.Text("Summary")),
	}}

	RoleSearchReady = s.Role{Name: "search form", Candidates: []s.Candidate{
		s.C(b.CSS(".mx-grid-search-input")),
		s.C(b.CSS(`input[id*="SearchInput"]`)),
		s.C(b.CSS(`input[type="text"]`)),
	}}

	RoleYearInput = s.Role{Name: "TA year input", Candidates: []s.Candidate{
		s.C(b.CSS("#mxui_widget_SearchInput_0_input")),
		s.C(b.CSS(`input[id*="SearchInput_0_input"]`)),
		s.C(b.CSS(".mx-name-searchField6 input")),
		s.C(b.CSS(".mx-grid-search-input input"), s.LabelContains("year")),
		s.C(b.CSS(`input[type="text"]`), s.LabelContains("year")),
	}}

	RoleIdentifierInput = s.Role{Name: "supplier code input", Candidates: []s.Candidate{
		s.C(b.CSS("#mxui_widget_SearchInput_4_input")),
		s.C(b.CSS(`input[id*="SearchInput_4_input"]`)),
		s.C(b.CSS(".mx-name-searchField10 input")),
		s.C(b.CSS(".mx-grid-search-input input"), s.LabelContains("supplier code")),
		s.C(b.CSS(`input[type="text"]`), s.LabelContains("supplier")),
	}}

	RoleSearchButton = s.Role{Name: "search button", Candidates: []s.Candidate{
		s.C(b.CSS("button"), s.TextEquals("Search")),
		s.C(b.CSS(`input[type="submit"][value*="Search"]`)),
		s.C(b.CSS(".search-btn")),
		s.C(b.CSS(`[data-button-id*="search"]`)),
		s.C(b.CSS("button.mx-grid-search-button")),
	}}

	RolePagination = s.Role{Name: "pagination status", Candidates: []s.Candidate{
		{Selector: b.CSS(".dijitInline.mx-grid-paging-status"), AllowHidden: true},
		{Selector: b.CSS(".mx-grid-paging-status"), AllowHidden: true},
		s.C(b.CSS(".mx-datagrid-paging, .paging-status"), s.TextContains(" of ")),
	}}

	RoleResultRow = s.Role{Name: "result row", Candidates: []s.Candidate{
		s.C(b.CSS(".mx-datagrid-body tr"), s.MinTextLength(10), s.ExcludeText(noDataPhrases...)),
		s.C(b.CSS("tbody tr"), s.MinTextLength(10), s.ExcludeText(noDataPhrases...)),
		s.C(b.CSS("table tr:not(:first-child)"), s.MinTextLength(10), s.ExcludeText(noDataPhrases...)),
	}}

	RoleEditControl = s.Role{Name: "edit control", Candidates: []s.Candidate{
		s.C(b.CSS("button"), s.TextContains("View TA detail")),
		s.C(b.CSS("button"), s.AnyOf(s.TextContains("Edit"), s.TextContains("แก้ไข"))),
		s.C(b.CSS(`input[type="button"], input[type="submit"]`), s.AttrContains("value", "edit")),
		s.C(b.CSS(".edit-btn, .btn-edit")),
		s.C(b.CSS(`[data-button-id*="edit"]`)),
		s.C(b.CSS(`[title*="Edit"]`)),
		s.C(b.CSS("button"), s.AttrContains("onclick", "edit")),
	}}

	RoleEditView = s.Role{Name: "edit view marker", Candidates: []s.Candidate{
		s.C(b.Text("Upload new Internal Attachment")),
		s.C(b.Text("Internal Attachment")),
		s.C(b.CSS("button"), s.TextContains("Upload")),
		{Selector: b.CSS(`input[type="file"]`), AllowHidden: true},
	}}

	RoleFileInput = s.Role{Name: "file input", Candidates: []s.Candidate{
		{Selector: b.CSS(`input[type="file"]`), AllowHidden: true},
	}}

	RoleOpenUpload = s.Role{Name: "open upload control", Candidates: []s.Candidate{
		s.C(b.CSS("button"), s.TextContains("Upload new Internal Attachment")),
		s.C(b.CSS("button"), s.TextContains("Upload File")),
		s.C(b.CSS("button, a"), s.AnyOf(s.TextContains("Upload"), s.TextContains("อัปโหลด"))),
		s.C(b.CSS(`input[value*="Upload"]`)),
	}}

	RoleConfirmUpload = s.Role{Name: "confirm upload", Candidates: []s.Candidate{
		s.C(b.CSS(".modal-dialog button, .mx-dialog button"), s.TextEquals("Upload File")),
		s.C(b.CSS("button"), s.TextEquals("Upload File")),
		s.C(b.CSS("button"), s.TextEquals("Upload")),
	}}

	RoleUploadSuccess = s.Role{Name: "upload success indicator", Candidates: []s.Candidate{
		s.C(b.Text("succeed!")),
		s.C(b.Text("success")),
		s.C(b.Text("สำเร็จ")),
		s.C(b.Text("uploaded")),
		s.C(b.CSS(".alert-success, .success")),
	}}

	RoleUploadError = s.Role{Name: "upload error message", Candidates: []s.Candidate{
		s.C(b.CSS(".modal-dialog .error, .mx-dialog .error"), s.MinTextLength(0)),
		s.C(b.CSS(`.alert-danger, [role="alert"]`), s.MinTextLength(0)),
	}}

	RoleModal = s.Role{Name: "modal dialog", Candidates: []s.Candidate{
		s.C(b.CSS(".modal-dialog")),
		s.C(b.CSS(".mx-dialog")),
		s.C(b.CSS(`[role="dialog"]`)),
	}}

	RoleModalOK = s.Role{Name: "modal OK button", Candidates: []s.Candidate{
		s.C(b.CSS(".modal-dialog button, .mx-dialog button"), s.TextEquals("OK"), s.Enabled()),
		s.C(b.CSS(`[role="dialog"] button`), s.TextEquals("OK"), s.Enabled()),
		s.C(b.CSS("button"), s.TextEquals("OK"), s.Enabled()),
	}}

	RoleSave = s.Role{Name: "save control", Candidates: []s.Candidate{
		s.C(b.CSS("button"), s.TextEquals("Save")),
		s.C(b.CSS(`input[type="submit"], input[type="button"]`), s.AttrContains("value", "save")),
		s.C(b.CSS("button.btn.btn-success, .save-btn"), s.TextContains("save")),
		s.C(b.CSS("button"), s.TextContains("save")),
	}}

	RoleSaveConfirmation = s.Role{Name: "save confirmation", Candidates: []s.Candidate{
		s.C(b.Text("saved")),
		s.C(b.Text("Saved")),
		s.C(b.Text("success")),
		s.C(b.Text("TA Summary")),
	}}
)
