package main

import (
	"context"
	"fmt"
	"io"
	"os/user"

	auditdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/audit/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/auditcontext"
)

// cliContext tags ctx with the local operator so audit entries name who ran the command.
func cliContext(ctx context.Context) context.Context {
	actorID := ""
	if u, err := user.Current(); err == nil {
		actorID = u.Username
	}
	return auditcontext.WithActor(ctx, string(auditdomain.ActorTypeCLI), actorID)
}

// recordAudit reports audit failures on errOut without failing the command.
func recordAudit(ctx context.Context, svc auditdomain.Service, errOut io.Writer, action, targetType string, targetID *string, metadata map[string]any) {
	if err := svc.AuditLog(cliContext(ctx), action, targetType, targetID, metadata); err != nil {
		fmt.Fprintf(errOut, "warning: audit log not recorded: %v\n", err)
	}
}
