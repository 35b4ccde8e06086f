package poll

import "github.com/ethereum/go-ethereum/common"

// Authorized reports whether caller may perform a privileged action on p.
// The caller must be the poll's recorded authority, and if a separate admin
// identity accompanies the request it must resolve to that same authority.
// Votes and claims are self-authorizing and never pass through this guard.
func Authorized(caller common.Address, admin *common.Address, p *Poll) bool {
	if caller != p.Authority {
		return false
	}
	if admin != nil && *admin != p.Authority {
		return false
	}
	return true
}
