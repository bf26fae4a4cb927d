package tgbot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sportsreg/internal/access"
	"sportsreg/internal/models"
	"sportsreg/internal/registration"
)

// keepValue leaves a field unchanged while editing.
const keepValue = "."

const (
	stepName = iota + 1
	stepGender
	stepDOB
	stepCCCD
	stepStudentID
	stepSystem
	stepAgeGroup
	stepContents
)

// regFlow collects a registration form one message at a time.
type regFlow struct {
	step     int
	editing  bool
	form     registration.Form
	catalog  registration.Catalog
	systems  []models.System
	selected []registration.Selection
}

var stepPrompts = map[int]string{
	stepName:      "Họ tên vận động viên:",
	stepGender:    "Giới tính (Nam/Nữ):",
	stepDOB:       "Ngày sinh (YYYY-MM-DD, hoặc - để bỏ qua):",
	stepCCCD:      "Số CCCD (chỉ gồm chữ số, hoặc - để bỏ qua):",
	stepStudentID: "Mã học sinh (hoặc - để bỏ qua):",
	stepSystem:    "Hệ thi đấu (hoặc - để bỏ qua):",
	stepAgeGroup:  "Nhóm tuổi (hoặc - để bỏ qua):",
}

func (a *App) beginRegister(ctx context.Context, cs *chatSession) (string, error) {
	if err := cs.access.Require(access.OpEditRegistrations); err != nil {
		return "", err
	}
	cat, err := a.svc.Catalog(ctx)
	if err != nil {
		return "", err
	}
	if len(cat) == 0 {
		return "Chưa có nội dung thi đấu để đăng ký.", nil
	}
	systems, err := a.svc.ListSystems(ctx)
	if err != nil {
		return "", err
	}
	cs.editor.CancelEdit()
	cs.flow = &regFlow{step: stepName, catalog: cat, systems: systems}
	return "📝 Đăng ký vận động viên mới (/cancel để huỷ)\n" + stepPrompts[stepName], nil
}

func (a *App) beginEdit(ctx context.Context, cs *chatSession, id string) (string, error) {
	if err := cs.access.Require(access.OpEditRegistrations); err != nil {
		return "", err
	}
	if id == "" {
		return "Cú pháp: /edit <id>", nil
	}
	reg, err := a.svc.GetRegistration(ctx, id)
	if err != nil {
		return "", err
	}
	if reg == nil {
		return "Không tìm thấy " + id + ".", nil
	}
	u, _ := cs.access.Unit()
	if reg.UnitID != u.ID {
		return "", fmt.Errorf("registration %s: %w", id, access.ErrForbidden)
	}
	cat, err := a.svc.Catalog(ctx)
	if err != nil {
		return "", err
	}
	systems, err := a.svc.ListSystems(ctx)
	if err != nil {
		return "", err
	}
	draft := cs.editor.BeginEdit(*reg, cat)
	cs.flow = &regFlow{
		step:     stepName,
		editing:  true,
		form:     draft.Form,
		catalog:  cat,
		systems:  systems,
		selected: draft.Selected,
	}
	msg := fmt.Sprintf("✏️ Sửa %s: %s. Gõ %q để giữ nguyên.\n", reg.ID, reg.AthleteName, keepValue)
	if len(draft.Stale) > 0 {
		msg += "Nội dung không còn tổ chức: " + strings.Join(draft.Stale, ", ") + "\n"
	}
	return msg + stepPrompts[stepName], nil
}

func (a *App) handleFlowInput(ctx context.Context, cs *chatSession, txt string) (string, error) {
	f := cs.flow
	keep := f.editing && txt == keepValue
	optional := func(dst *string) {
		switch {
		case keep:
		case txt == "-":
			*dst = ""
		default:
			*dst = txt
		}
	}

	switch f.step {
	case stepName:
		if !keep {
			if txt == "" {
				return "Họ tên không được để trống. " + stepPrompts[stepName], nil
			}
			f.form.AthleteName = txt
		}
	case stepGender:
		if !keep {
			f.form.Gender = txt
		}
	case stepDOB:
		optional(&f.form.DOB)
	case stepCCCD:
		if !keep && txt != "-" && !allDigits(txt) {
			return "Số CCCD chỉ gồm chữ số. " + stepPrompts[stepCCCD], nil
		}
		optional(&f.form.CCCD)
	case stepStudentID:
		optional(&f.form.StudentID)
	case stepSystem:
		if n, err := strconv.Atoi(txt); err == nil && n >= 1 && n <= len(f.systems) {
			txt = f.systems[n-1].Name
		}
		optional(&f.form.SystemName)
	case stepAgeGroup:
		optional(&f.form.AgeGroup)
	case stepContents:
		if !keep {
			selected, err := parseSelection(txt, f.catalog)
			if err != nil {
				return err.Error() + "\n" + catalogText(f.catalog), nil
			}
			f.selected = selected
		}
		return a.submitFlow(ctx, cs)
	}

	f.step++
	switch f.step {
	case stepContents:
		return "Chọn nội dung thi đấu (số thứ tự, cách nhau bằng dấu phẩy):\n" + catalogText(f.catalog), nil
	case stepSystem:
		return stepPrompts[stepSystem] + "\n" + systemsText(f.systems), nil
	}
	return stepPrompts[f.step], nil
}

func systemsText(systems []models.System) string {
	var b strings.Builder
	for i, s := range systems {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Name)
	}
	return b.String()
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (a *App) submitFlow(ctx context.Context, cs *chatSession) (string, error) {
	f := cs.flow
	cs.flow = nil
	if err := a.ctl.Refresh(ctx, &cs.access); err != nil {
		cs.editor.CancelEdit()
		if isUserError(err) {
			return userMessage(err), nil
		}
		return "", err
	}
	u, _ := cs.access.Unit()
	id, err := cs.editor.Submit(ctx, u, f.form, f.selected)
	if err != nil {
		cs.editor.CancelEdit()
		if isUserError(err) {
			return userMessage(err), nil
		}
		return "", err
	}
	if f.editing {
		return "✅ Đã cập nhật " + id + ".", nil
	}
	return fmt.Sprintf("✅ Đã đăng ký %s (%s).", f.form.AthleteName, id), nil
}

// parseSelection turns "1, 3" into the matching catalog entries.
func parseSelection(txt string, cat registration.Catalog) ([]registration.Selection, error) {
	var out []registration.Selection
	seen := map[int]bool{}
	for _, part := range strings.Split(txt, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > len(cat) {
			return nil, fmt.Errorf("Số %q không hợp lệ.", part)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, cat[n-1])
	}
	if len(out) == 0 {
		return nil, errors.New("Chọn ít nhất một nội dung.")
	}
	return out, nil
}
