package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"auth-dashboard/internal/client"
	"auth-dashboard/internal/guard"
	"auth-dashboard/internal/model"
	"auth-dashboard/internal/session"
	"auth-dashboard/internal/validation"
)

// app 終端機版儀表板；session.Store 保存登入狀態，guard 決定能否顯示各畫面
type app struct {
	api   *client.Client
	store *session.Store
	in    *bufio.Reader
	out   io.Writer
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx)
	case "logout":
		a.store.Logout(ctx)
		fmt.Fprintln(a.out, "Signed out.")
		return nil
	case "status":
		return a.status(ctx)
	case "dashboard":
		return a.dashboard(ctx, args)
	case "user":
		return a.user(ctx, args)
	case "pending":
		return a.pending(ctx)
	case "approve", "reject", "delete":
		return a.admin(ctx, cmd, args)
	case "create":
		return a.create(ctx)
	}
	fmt.Fprint(a.out, usage)
	return errUsage
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *app) password(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	pw, err := readPassword(stdinFd())
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// printErrors 依欄位名稱排序輸出表單錯誤
func (a *app) printErrors(errs validation.Errors) error {
	err := errs.Err()
	var verr *validation.Error
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			fmt.Fprintf(a.out, "  %s: %s\n", f, errs[f])
		}
	}
	return err
}

// gate 恢復 session 後套用 guard；非 Render 時輸出導向原因並回傳錯誤
func (a *app) gate(ctx context.Context, view string, admin bool) error {
	a.store.Initialize(ctx)
	eval := guard.Evaluate
	if admin {
		eval = guard.EvaluateAdmin
	}
	d := eval(a.store.Snapshot(), view)
	if d.Action == guard.ActionRender {
		return nil
	}
	if d.Reason != "" {
		fmt.Fprintf(a.out, "! %s\n", d.Reason)
	}
	fmt.Fprintf(a.out, "Redirecting to %s (from %s).\n", d.To, view)
	return fmt.Errorf("%s: %s", view, d.Action)
}

// replaceSession 登入或註冊前釋放已保存的 session
func (a *app) replaceSession(ctx context.Context) {
	a.store.Initialize(ctx)
	if a.store.Snapshot().IsAuthenticated() {
		a.store.Logout(ctx)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	var email string
	var err error
	if len(args) > 0 {
		email = args[0]
	} else if email, err = a.prompt("Email"); err != nil {
		return err
	}
	pw, err := a.password("Password")
	if err != nil {
		return err
	}

	form := validation.NewForm(map[string]string{"email": "", "password": ""}, validation.SignInRules())
	form.SetFieldValue("email", email)
	form.SetFieldValue("password", pw)
	if !form.Validate() {
		return a.printErrors(form.Errors())
	}

	a.replaceSession(ctx)
	if err := a.store.Login(ctx, session.Credentials{Email: email, Password: pw}); err != nil {
		fmt.Fprintf(a.out, "! %s\n", a.store.Snapshot().Error)
		return err
	}
	u := a.store.Snapshot().User
	fmt.Fprintf(a.out, "Welcome, %s %s.\n", u.FirstName, u.LastName)
	return nil
}

func (a *app) register(ctx context.Context) error {
	values := map[string]string{}
	for _, f := range []struct{ key, label string }{
		{"email", "Email"},
		{"first_name", "First name"},
		{"last_name", "Last name"},
	} {
		v, err := a.prompt(f.label)
		if err != nil {
			return err
		}
		values[f.key] = v
	}
	var err error
	if values["password"], err = a.password("Password"); err != nil {
		return err
	}
	if values["confirmPassword"], err = a.password("Confirm password"); err != nil {
		return err
	}

	res := validation.ValidateForm(values, validation.SignUpRules(values["password"]))
	if !res.IsValid {
		return a.printErrors(res.Errors)
	}

	a.replaceSession(ctx)
	err = a.store.Register(ctx, session.Registration{
		Profile: model.Profile{
			Email:     values["email"],
			FirstName: values["first_name"],
			LastName:  values["last_name"],
		},
		Password: values["password"],
	})
	if err != nil {
		fmt.Fprintf(a.out, "! %s\n", a.store.Snapshot().Error)
		return err
	}
	if u := a.store.Snapshot().User; u != nil && !u.IsApproved {
		fmt.Fprintln(a.out, "Registration successful! Your account is waiting for admin approval.")
		return nil
	}
	fmt.Fprintln(a.out, "Registration successful!")
	return nil
}

func (a *app) status(ctx context.Context) error {
	a.store.Initialize(ctx)
	st := a.store.Snapshot()
	if !st.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	u := st.User
	state := "approved"
	if !u.IsApproved {
		state = "pending approval"
	}
	role := "user"
	if u.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s, %s).\n", u.Email, role, state)
	return nil
}

func (a *app) table(users []model.User) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tADMIN\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s %s\t%t\t%s\n", u.ID, u.Email, u.FirstName, u.LastName, u.IsAdmin, u.CreatedAt.Format("2006-01-02"))
	}
	tw.Flush()
}

func intArg(args []string, def int) (int, error) {
	if len(args) == 0 {
		if def > 0 {
			return def, nil
		}
		return 0, errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q is not a positive number", errUsage, args[0])
	}
	return n, nil
}

func (a *app) dashboard(ctx context.Context, args []string) error {
	page, err := intArg(args, 1)
	if err != nil {
		return err
	}
	if err := a.gate(ctx, "/dashboard", false); err != nil {
		return err
	}
	res, err := a.api.Users(ctx, a.store.Snapshot().Token, page)
	if err != nil {
		return err
	}
	a.table(res.Items)
	fmt.Fprintf(a.out, "Page %d of %d (%d users)\n", res.Page, res.TotalPages, res.Total)
	return nil
}

func (a *app) user(ctx context.Context, args []string) error {
	id, err := intArg(args, 0)
	if err != nil {
		return err
	}
	if err := a.gate(ctx, "/users/"+strconv.Itoa(id), false); err != nil {
		return err
	}
	u, err := a.api.User(ctx, a.store.Snapshot().Token, id)
	if err != nil {
		return err
	}
	a.table([]model.User{*u})
	return nil
}

func (a *app) pending(ctx context.Context) error {
	if err := a.gate(ctx, "/approvals", true); err != nil {
		return err
	}
	users, err := a.api.Pending(ctx, a.store.Snapshot().Token)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No pending approvals.")
		return nil
	}
	a.table(users)
	return nil
}

func (a *app) admin(ctx context.Context, cmd string, args []string) error {
	id, err := intArg(args, 0)
	if err != nil {
		return err
	}
	if err := a.gate(ctx, "/approvals", true); err != nil {
		return err
	}
	token := a.store.Snapshot().Token
	switch cmd {
	case "approve":
		u, err := a.api.Approve(ctx, token, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Approved %s.\n", u.Email)
	case "reject":
		if err := a.api.Reject(ctx, token, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Rejected user %d.\n", id)
	case "delete":
		if err := a.api.DeleteUser(ctx, token, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted user %d.\n", id)
	}
	return nil
}

func (a *app) create(ctx context.Context) error {
	if err := a.gate(ctx, "/users/new", true); err != nil {
		return err
	}
	values := map[string]string{}
	for _, f := range []struct{ key, label string }{
		{"email", "Email"},
		{"first_name", "First name"},
		{"last_name", "Last name"},
		{"avatar", "Avatar URL (optional)"},
	} {
		v, err := a.prompt(f.label)
		if err != nil {
			return err
		}
		values[f.key] = v
	}
	res := validation.ValidateForm(values, validation.UserRules())
	if !res.IsValid {
		return a.printErrors(res.Errors)
	}
	u, err := a.api.CreateUser(ctx, a.store.Snapshot().Token, model.Profile{
		Email:     values["email"],
		FirstName: values["first_name"],
		LastName:  values["last_name"],
		Avatar:    values["avatar"],
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created user %d (%s).\n", u.ID, u.Email)
	return nil
}
