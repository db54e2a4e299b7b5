package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/hunterjsb/draftbot/internal/cache"
)

const guildRolesTTL = 5 * time.Minute

type guildKey struct{}

func withGuild(ctx context.Context, guildID string) context.Context {
	return context.WithValue(ctx, guildKey{}, guildID)
}

func guildFromContext(ctx context.Context) string {
	id, _ := ctx.Value(guildKey{}).(string)
	return id
}

var errNoGuild = errors.New("role check outside of a guild")

// RoleAuthorizer checks a member's roles by name against the guild's role list.
type RoleAuthorizer struct {
	session *discordgo.Session
	roles   *cache.TTL[string, []*discordgo.Role]
}

func NewRoleAuthorizer(s *discordgo.Session) *RoleAuthorizer {
	return &RoleAuthorizer{
		session: s,
		roles:   cache.New[string, []*discordgo.Role](guildRolesTTL),
	}
}

// HasAnyRole reports whether userID holds a role named in names. The guild is
// taken from ctx.
func (a *RoleAuthorizer) HasAnyRole(ctx context.Context, userID string, names []string) (bool, error) {
	guildID := guildFromContext(ctx)
	if guildID == "" {
		return false, errNoGuild
	}

	member, err := a.session.State.Member(guildID, userID)
	if err != nil {
		member, err = a.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		if err != nil {
			return false, fmt.Errorf("fetching member %s: %w", userID, err)
		}
	}

	roles, err := a.guildRoles(ctx, guildID)
	if err != nil {
		return false, err
	}
	// A role created since the last fetch is missing from the cached list.
	if !knowsRoles(roles, member.Roles) {
		a.roles.Delete(guildID)
		if roles, err = a.guildRoles(ctx, guildID); err != nil {
			return false, err
		}
	}

	return hasAnyRoleName(member.Roles, roles, names), nil
}

func (a *RoleAuthorizer) guildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	if roles, ok := a.roles.Get(guildID); ok {
		return roles, nil
	}
	roles, err := a.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching roles for guild %s: %w", guildID, err)
	}
	a.roles.Set(guildID, roles)
	return roles, nil
}

// knowsRoles reports whether every role ID in ids appears in roles.
func knowsRoles(roles []*discordgo.Role, ids []string) bool {
	known := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		known[r.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return false
		}
	}
	return true
}

// hasAnyRoleName matches role names case-insensitively.
func hasAnyRoleName(memberRoleIDs []string, guildRoles []*discordgo.Role, names []string) bool {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}

	held := make(map[string]struct{}, len(memberRoleIDs))
	for _, id := range memberRoleIDs {
		held[id] = struct{}{}
	}

	for _, r := range guildRoles {
		if _, ok := held[r.ID]; !ok {
			continue
		}
		if _, ok := wanted[strings.ToLower(r.Name)]; ok {
			return true
		}
	}
	return false
}
