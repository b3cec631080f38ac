package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/services"
)

// Palette, Catppuccin Mocha.
const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorCrust    lipgloss.Color = "#11111b"
)

const (
	colorBrand   = colorMauve
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
	colorMuted   = colorOverlay1
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorLavender)
	labelStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText)
	okStyle     = lipgloss.NewStyle().Foreground(colorSuccess)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)

	badgeBase = lipgloss.NewStyle().Bold(true).Foreground(colorCrust).Padding(0, 1)
)

var orderStatusColors = map[models.OrderStatus]lipgloss.Color{
	models.OrderStatusNew:             colorBlue,
	models.OrderStatusProcessing:      colorPeach,
	models.OrderStatusReadyToDelivery: colorInfo,
	models.OrderStatusCompleted:       colorSuccess,
}

var vendorStatusColors = map[models.VendorStatus]lipgloss.Color{
	models.VendorPending:   colorWarning,
	models.VendorApproved:  colorSuccess,
	models.VendorRejected:  colorError,
	models.VendorSuspended: colorError,
}

// statusBadge renders the status label on its lifecycle color.
func statusBadge(s models.OrderStatus) string {
	c, ok := orderStatusColors[s]
	if !ok {
		c = colorMuted
	}
	return badgeBase.Background(c).Render(s.Label())
}

func vendorBadge(s models.VendorStatus) string {
	c, ok := vendorStatusColors[s]
	if !ok {
		c = colorMuted
	}
	return badgeBase.Background(c).Render(strings.ToUpper(string(s)))
}

// money formats an amount in birr.
func money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := fmt.Sprintf("%.2f", v)
	intPart, frac := whole[:len(whole)-3], whole[len(whole)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("ETB %s%s.%s", sign, b.String(), frac)
}

func dateOf(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// table lays rows out in aligned columns under a bold header row.
func table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	line := func(cells []string, style lipgloss.Style) {
		parts := make([]string, len(widths))
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = style.Width(w).Render(cell)
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		b.WriteByte('\n')
	}
	line(headers, headerStyle)
	for _, row := range rows {
		line(row, lipgloss.NewStyle())
	}
	return b.String()
}

// fields renders label/value pairs, labels aligned.
func fields(pairs ...[2]string) string {
	w := 0
	for _, p := range pairs {
		if lipgloss.Width(p[0]) > w {
			w = lipgloss.Width(p[0])
		}
	}
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(labelStyle.Width(w).Render(p[0]))
		b.WriteString("  ")
		b.WriteString(valueStyle.Render(p[1]))
		b.WriteByte('\n')
	}
	return b.String()
}

func ordersTable(orders []models.Order) string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			fmt.Sprintf("#%d", o.ID),
			statusBadge(o.Status),
			o.Client.Name,
			o.Product.Name,
			fmt.Sprintf("%d", o.Quantity),
			money(o.TotalAmount),
			dateOf(o.CreatedAt),
		})
	}
	return table([]string{"ID", "STATUS", "CLIENT", "PRODUCT", "QTY", "TOTAL", "PLACED"}, rows)
}

func pageText(p models.Pagination, noun string) string {
	return fmt.Sprintf("page %d of %d · %d %s", p.Page, max(p.TotalPages, 1), p.Total, noun)
}

func pageFooter(p models.Pagination) string { return mutedStyle.Render(pageText(p, "orders")) }

// aggregatesLine summarises the orders shown on screen.
func aggregatesLine(a services.PageAggregates) string {
	c := a.Counts
	counts := fmt.Sprintf("all %d · new %d · processing %d · ready %d · completed %d",
		c.All, c.New, c.Processing, c.ReadyToDelivery, c.Completed)
	return counts + "\n" + fmt.Sprintf("revenue %s · average %s", money(a.TotalRevenue), money(a.AverageOrderValue))
}

func orderDetail(o *models.Order) string {
	next := "none, order is completed"
	if n, ok := models.NextValidStatus(o.Status); ok {
		next = n.Label()
	}
	pairs := [][2]string{
		{"Order", fmt.Sprintf("#%d", o.ID)},
		{"Status", statusBadge(o.Status)},
		{"Next", next},
		{"Client", strings.TrimSpace(o.Client.Name + " " + o.Client.PhoneNumber)},
		{"Product", o.Product.Name},
		{"Quantity", fmt.Sprintf("%d × %s", o.Quantity, money(o.UnitPrice))},
		{"Total", money(o.TotalAmount)},
		{"Payment", o.PaymentMethod},
		{"Placed", dateOf(o.CreatedAt)},
		{"Updated", dateOf(o.UpdatedAt)},
	}
	if d := o.Delivery; d != nil {
		pairs = append(pairs, [2]string{"Delivery", strings.ReplaceAll(string(d.Status), "_", " ")})
		if d.DriverName != "" {
			pairs = append(pairs, [2]string{"Driver", d.DriverName})
		}
	}
	return fields(pairs...)
}

func statsView(s *models.VendorStats) string {
	pairs := [][2]string{
		{"Orders", fmt.Sprintf("%d", s.TotalOrders)},
		{"Revenue", money(s.TotalRevenue)},
		{"Average", money(s.AverageOrderValue)},
	}
	for _, st := range models.OrderStatuses {
		pairs = append(pairs, [2]string{st.Label(), fmt.Sprintf("%d", s.ByStatus[st])})
	}
	return fields(pairs...)
}

func productsTable(products []models.Product) string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		active := okStyle.Render("active")
		if !p.IsActive {
			active = mutedStyle.Render("hidden")
		}
		rows = append(rows, []string{p.ID.String(), p.Name, money(p.Price), fmt.Sprintf("%d", p.Stock), p.CategoryID.String(), active})
	}
	return table([]string{"ID", "NAME", "PRICE", "STOCK", "CATEGORY", "STATE"}, rows)
}

func productDetail(p *models.Product) string {
	pairs := [][2]string{
		{"Product", p.ID.String()},
		{"Name", p.Name},
		{"Price", money(p.Price)},
		{"Stock", fmt.Sprintf("%d", p.Stock)},
		{"Category", p.CategoryID.String()},
	}
	if p.SubcategoryID != nil {
		pairs = append(pairs, [2]string{"Subcategory", p.SubcategoryID.String()})
	}
	if p.Description != "" {
		pairs = append(pairs, [2]string{"Description", p.Description})
	}
	if len(p.Images) > 0 {
		pairs = append(pairs, [2]string{"Images", strings.Join(p.Images, "\n")})
	}
	if p.Video != nil {
		pairs = append(pairs, [2]string{"Video", *p.Video})
	}
	return fields(pairs...)
}

func vendorDetail(v *models.Vendor) string {
	pairs := [][2]string{
		{"Vendor", v.ID.String()},
		{"Business", v.BusinessName},
		{"Status", vendorBadge(v.Status)},
		{"Type", string(v.Type)},
		{"Phone", v.PhoneNumber},
	}
	if v.Email != "" {
		pairs = append(pairs, [2]string{"Email", v.Email})
	}
	if v.Address != "" {
		pairs = append(pairs, [2]string{"Address", v.Address})
	}
	if v.RejectionReason != "" {
		pairs = append(pairs, [2]string{"Reason", v.RejectionReason})
	}
	return fields(pairs...)
}

func notificationsTable(ns []models.Notification) string {
	rows := make([][]string, 0, len(ns))
	for _, n := range ns {
		mark := warnStyle.Render("●")
		if n.IsRead {
			mark = mutedStyle.Render("○")
		}
		rows = append(rows, []string{mark, n.ID.String(), n.Title, n.Body, dateOf(n.CreatedAt)})
	}
	return table([]string{"", "ID", "TITLE", "MESSAGE", "AT"}, rows)
}

// gateView explains where a vendor owner lands after login.
func gateView(g services.GateResult) string {
	switch g.Gate {
	case services.GateDashboard:
		return okStyle.Render("Approved.") + " Your storefront is live: run `vendorctl dashboard`."
	case services.GatePendingApproval:
		return warnStyle.Render("Pending approval.") + " Your application is being reviewed."
	case services.GateRejected:
		msg := errStyle.Render("Application not approved.")
		if g.Reason != "" {
			msg += " Reason: " + g.Reason
		}
		return msg
	default:
		return "No vendor application yet. Apply on the vendor portal to open a storefront."
	}
}

func dashboardView(d *services.Dashboard) string {
	head := titleStyle.Render(d.Vendor.BusinessName) + "  " + vendorBadge(d.Vendor.Status)

	var stats string
	if d.Stats != nil {
		stats = fields(
			[2]string{"Orders", fmt.Sprintf("%d", d.Stats.TotalOrders)},
			[2]string{"Revenue", money(d.Stats.TotalRevenue)},
			[2]string{"Average", money(d.Stats.AverageOrderValue)},
			[2]string{"Unread", fmt.Sprintf("%d", d.Unread)},
		)
	}

	var recent string
	if d.RecentPage != nil && len(d.RecentPage.Orders) > 0 {
		recent = headerStyle.Render("Recent orders") + "\n" + ordersTable(d.RecentPage.Orders) + aggregatesLine(d.PageSummary)
	} else {
		recent = mutedStyle.Render("No orders yet.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, panelStyle.Render(strings.TrimRight(stats, "\n")), recent)
}

// errorView renders a command failure, listing field messages of form
// errors one per line.
func errorView(err error) string {
	var fe *services.FormError
	if errors.As(err, &fe) {
		var b strings.Builder
		if fe.Message != "" {
			b.WriteString(errStyle.Render(fe.Message))
		} else {
			b.WriteString(errStyle.Render("Please fix the following:"))
		}
		for _, f := range fe.Fields {
			b.WriteString("\n  " + labelStyle.Render(f.Field) + "  " + f.Message)
		}
		return b.String()
	}
	return errStyle.Render("Error: ") + err.Error()
}
