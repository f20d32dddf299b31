// Package util implements the request-shaping helpers shared by every
// provider adapter: role mapping, tool descriptor extraction, request
// normalization + content hashing, and HTTP status-to-error-kind mapping
// (spec §4.9, §4.11).
package util

import "github.com/llmcomms/llmcomms/llm"

// VendorRole is the canonical wire-format role string a vendor expects.
type VendorRole string

const (
	VendorRoleSystem    VendorRole = "system"
	VendorRoleUser      VendorRole = "user"
	VendorRoleAssistant VendorRole = "assistant"
	VendorRoleTool      VendorRole = "tool"
)

// MapRole maps an llm.MessageRole to its canonical vendor wire role per
// spec §4.11: system->system, user->user, assistant->assistant,
// function->tool. Unknown roles fall back to user. Total and idempotent:
// re-mapping an already-mapped role string through RoleFromVendor and back
// is a no-op for every role the taxonomy defines.
func MapRole(role llm.MessageRole) VendorRole {
	switch role {
	case llm.RoleSystem:
		return VendorRoleSystem
	case llm.RoleUser:
		return VendorRoleUser
	case llm.RoleAssistant:
		return VendorRoleAssistant
	case llm.RoleFunction:
		return VendorRoleTool
	default:
		return VendorRoleUser
	}
}

// RoleFromVendor maps a vendor wire role string back to an llm.MessageRole,
// the inverse direction adapters need when parsing responses. Unrecognized
// strings fall back to assistant, since response mapping only ever sees
// model-authored messages.
func RoleFromVendor(role string) llm.MessageRole {
	switch VendorRole(role) {
	case VendorRoleSystem:
		return llm.RoleSystem
	case VendorRoleUser:
		return llm.RoleUser
	case VendorRoleTool:
		return llm.RoleFunction
	case VendorRoleAssistant:
		return llm.RoleAssistant
	default:
		return llm.RoleAssistant
	}
}
