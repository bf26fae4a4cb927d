package tgbot

import (
	"context"
	"fmt"
	"strings"

	"sportsreg/internal/access"
	"sportsreg/internal/models"
	"sportsreg/internal/registration"
	"sportsreg/internal/tournament"
)

// maxListed caps list replies to stay under Telegram's message size.
const maxListed = 50

func (a *App) overview(ctx context.Context, cs *chatSession) (string, error) {
	if err := cs.access.Require(access.OpViewOverview); err != nil {
		return "", err
	}
	ov, err := a.svc.Overview(ctx)
	if err != nil {
		return "", err
	}
	name := ov.TournamentName
	if name == "" {
		name = "Giải thi đấu"
	}
	deadline := "chưa đặt"
	if ov.Deadline != "" {
		deadline = ov.Deadline
		if ov.DeadlinePassed {
			deadline += " (đã hết hạn)"
		}
	}
	return fmt.Sprintf("🏆 %s\nHạn đăng ký: %s\nMôn thi: %d\nĐơn vị: %d\nVận động viên: %d",
		name, deadline, ov.Disciplines, ov.Units, ov.Athletes), nil
}

func (a *App) results(ctx context.Context, cs *chatSession) (string, error) {
	if err := cs.access.Require(access.OpViewResults); err != nil {
		return "", err
	}
	regs, err := a.svc.ListRegistrations(ctx)
	if err != nil {
		return "", err
	}
	var ranked []models.Registration
	for _, r := range regs {
		if r.Rank != "" {
			ranked = append(ranked, r)
		}
	}
	if len(ranked) == 0 {
		return "Chưa có kết quả.", nil
	}
	var b strings.Builder
	b.WriteString("🏅 Kết quả\n")
	writeList(&b, ranked, func(r models.Registration) string {
		return fmt.Sprintf("%s (%s): %s - %s", r.AthleteName, r.UnitName, r.RegisteredContents, r.Rank)
	})
	return b.String(), nil
}

func (a *App) athletes(ctx context.Context, cs *chatSession) (string, error) {
	if err := cs.access.Require(access.OpEditRegistrations); err != nil {
		return "", err
	}
	u, _ := cs.access.Unit()
	regs, err := a.svc.ListRegistrationsOf(ctx, u.ID)
	if err != nil {
		return "", err
	}
	if len(regs) == 0 {
		return "Chưa có vận động viên. Gõ /register để thêm.", nil
	}
	var b strings.Builder
	b.WriteString("👥 Vận động viên của " + u.Name + "\n")
	writeList(&b, regs, func(r models.Registration) string {
		line := fmt.Sprintf("[%s] %s: %s", r.ID, r.AthleteName, r.RegisteredContents)
		if r.Rank != "" {
			line += " - " + r.Rank
		}
		return line
	})
	return b.String(), nil
}

func (a *App) deleteRegistration(ctx context.Context, cs *chatSession, id string) (string, error) {
	if id == "" {
		return "Cú pháp: /delete <id>", nil
	}
	var (
		ok  bool
		err error
	)
	switch {
	case cs.access.Can(access.OpDeleteRegistrations):
		ok, err = a.svc.DeleteRegistration(ctx, id)
	case cs.access.Can(access.OpEditRegistrations):
		var reg *models.Registration
		reg, err = a.svc.GetRegistration(ctx, id)
		if err != nil || reg == nil {
			break
		}
		u, _ := cs.access.Unit()
		if reg.UnitID != u.ID {
			return "", fmt.Errorf("registration %s: %w", id, access.ErrForbidden)
		}
		ok, err = cs.editor.DeleteRegistration(ctx, id)
	default:
		return "", cs.access.Require(access.OpDeleteRegistrations)
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "Không tìm thấy " + id + ".", nil
	}
	return "🗑 Đã xoá " + id + ".", nil
}

func (a *App) exportLink(cs *chatSession) (string, error) {
	if err := cs.access.Require(access.OpExportOwn); err != nil {
		return "", err
	}
	u, _ := cs.access.Unit()
	base := a.cfg.BasePublicURL
	if base == "" {
		base = "http://localhost" + a.cfg.HTTPAddr
	}
	return "📤 Tải danh sách (CSV): " + tournament.ExportLink(base, a.cfg.ExportSecret, u.ID), nil
}

// setRank parses "<id> <rank>"; the rank may contain spaces and "-" clears
// it.
func (a *App) setRank(ctx context.Context, cs *chatSession, arg string) (string, error) {
	if err := cs.access.Require(access.OpEnterResults); err != nil {
		return "", err
	}
	id, rank, _ := strings.Cut(arg, " ")
	rank = strings.TrimSpace(rank)
	if id == "" || rank == "" {
		return "Cú pháp: /rank <id> <" + strings.Join(models.Ranks[1:], "|") + "|->", nil
	}
	if rank == "-" {
		rank = models.RankNone
	}
	ok, err := a.svc.SetRank(ctx, id, rank)
	if err != nil {
		return "", err
	}
	if !ok {
		return "Không tìm thấy " + id + ".", nil
	}
	return fmt.Sprintf("✅ %s: %q", id, rank), nil
}

func (a *App) units(ctx context.Context, cs *chatSession) (string, error) {
	if err := cs.access.Require(access.OpManageUnits); err != nil {
		return "", err
	}
	list, err := a.svc.ListUnits(ctx)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "Chưa có đơn vị. Gõ /addunit để thêm.", nil
	}
	var b strings.Builder
	b.WriteString("Đơn vị\n")
	writeList(&b, list, func(u models.Unit) string {
		return fmt.Sprintf("%s (%s) mã: %s", u.Name, u.Manager, u.RegistrationCode)
	})
	return b.String(), nil
}

func (a *App) addUnit(ctx context.Context, cs *chatSession, arg string) (string, error) {
	if err := cs.access.Require(access.OpManageUnits); err != nil {
		return "", err
	}
	name, manager, found := strings.Cut(arg, "|")
	if !found {
		return "Cú pháp: /addunit <tên> | <người phụ trách>", nil
	}
	u, err := a.svc.CreateUnit(ctx, name, manager)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Đã tạo đơn vị %s. Mã đăng nhập: %s", u.Name, u.RegistrationCode), nil
}

func (a *App) setDeadline(ctx context.Context, cs *chatSession, arg string) (string, error) {
	if err := cs.access.Require(access.OpManageSettings); err != nil {
		return "", err
	}
	if err := a.svc.SetDeadline(ctx, arg); err != nil {
		return "", err
	}
	if arg == "" {
		return "✅ Đã bỏ hạn đăng ký.", nil
	}
	return "✅ Hạn đăng ký: " + arg, nil
}

func writeList[T any](b *strings.Builder, items []T, line func(T) string) {
	for i, it := range items {
		if i == maxListed {
			fmt.Fprintf(b, "… và %d mục khác", len(items)-maxListed)
			return
		}
		fmt.Fprintf(b, "%d. %s\n", i+1, line(it))
	}
}

func catalogText(cat registration.Catalog) string {
	var b strings.Builder
	for i, sel := range cat {
		fmt.Fprintf(&b, "%d. %s\n", i+1, sel.String())
	}
	return b.String()
}
