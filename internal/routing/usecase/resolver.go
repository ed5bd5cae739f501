package usecase

import (
	"log"
	"strings"

	routingdomain "mailroute-backend/internal/routing/domain"
	"mailroute-backend/internal/routing/repository"
)

// Match rules, in precedence order.
const (
	MatchAddress  = "address"
	MatchCatchAll = "catch_all"
	MatchNone     = "none"
)

// Resolution is the outcome of resolving a recipient: an endpoint, a
// legacy webhook, or nothing. Absence of a destination is a valid
// terminal state, not an error.
type Resolution struct {
	Endpoint      *routingdomain.Endpoint
	LegacyWebhook *routingdomain.Webhook
	MatchedBy     string
}

func (r *Resolution) HasDestination() bool {
	return r.Endpoint != nil || r.LegacyWebhook != nil
}

// ResolverUsecase picks the single destination for a recipient address.
type ResolverUsecase interface {
	Resolve(accountID, recipient string) *Resolution
}

type resolverUsecase struct {
	addressRepo  repository.EmailAddressRepository
	endpointRepo repository.EndpointRepository
	domainRepo   repository.DomainRepository
	webhookRepo  repository.WebhookRepository
}

func NewResolverUsecase(addressRepo repository.EmailAddressRepository, endpointRepo repository.EndpointRepository, domainRepo repository.DomainRepository, webhookRepo repository.WebhookRepository) ResolverUsecase {
	return &resolverUsecase{
		addressRepo:  addressRepo,
		endpointRepo: endpointRepo,
		domainRepo:   domainRepo,
		webhookRepo:  webhookRepo,
	}
}

// Resolve applies the precedence chain: specific address endpoint, address
// legacy webhook, domain catch-all endpoint, catch-all legacy webhook,
// none. First match wins; nothing is merged. Lookup errors are logged and
// collapse to no-match.
func (u *resolverUsecase) Resolve(accountID, recipient string) *Resolution {
	if res := u.resolveAddress(accountID, recipient); res != nil {
		return res
	}
	if res := u.resolveCatchAll(accountID, recipient); res != nil {
		return res
	}
	return &Resolution{MatchedBy: MatchNone}
}

func (u *resolverUsecase) resolveAddress(accountID, recipient string) *Resolution {
	addr, err := u.addressRepo.GetByAddress(accountID, recipient)
	if err != nil {
		log.Printf("[WARN] address lookup failed for %s: %v", recipient, err)
		return nil
	}
	if addr == nil || !addr.Active {
		return nil
	}

	if addr.EndpointID != nil {
		if ep := u.activeEndpoint(accountID, *addr.EndpointID); ep != nil {
			return &Resolution{Endpoint: ep, MatchedBy: MatchAddress}
		}
	}
	if addr.WebhookID != nil {
		if wh := u.activeWebhook(accountID, *addr.WebhookID); wh != nil {
			return &Resolution{LegacyWebhook: wh, MatchedBy: MatchAddress}
		}
	}
	return nil
}

func (u *resolverUsecase) resolveCatchAll(accountID, recipient string) *Resolution {
	domainPart := extractDomain(recipient)
	if domainPart == "" {
		return nil
	}

	mailDomain, err := u.domainRepo.GetByDomain(accountID, domainPart)
	if err != nil {
		log.Printf("[WARN] domain lookup failed for %s: %v", domainPart, err)
		return nil
	}
	if mailDomain == nil || !mailDomain.CatchAllEnabled {
		return nil
	}

	if mailDomain.CatchAllEndpointID != nil {
		if ep := u.activeEndpoint(accountID, *mailDomain.CatchAllEndpointID); ep != nil {
			return &Resolution{Endpoint: ep, MatchedBy: MatchCatchAll}
		}
	}
	if mailDomain.CatchAllWebhookID != nil {
		if wh := u.activeWebhook(accountID, *mailDomain.CatchAllWebhookID); wh != nil {
			return &Resolution{LegacyWebhook: wh, MatchedBy: MatchCatchAll}
		}
	}
	return nil
}

func (u *resolverUsecase) activeEndpoint(accountID, id string) *routingdomain.Endpoint {
	ep, err := u.endpointRepo.GetByID(accountID, id)
	if err != nil {
		log.Printf("[WARN] endpoint lookup failed for %s: %v", id, err)
		return nil
	}
	if ep == nil || !ep.Active {
		return nil
	}
	return ep
}

func (u *resolverUsecase) activeWebhook(accountID, id string) *routingdomain.Webhook {
	wh, err := u.webhookRepo.GetByID(accountID, id)
	if err != nil {
		log.Printf("[WARN] webhook lookup failed for %s: %v", id, err)
		return nil
	}
	if wh == nil || !wh.Active {
		return nil
	}
	return wh
}

func extractDomain(address string) string {
	i := strings.LastIndex(address, "@")
	if i < 0 || i == len(address)-1 {
		return ""
	}
	return strings.ToLower(address[i+1:])
}
