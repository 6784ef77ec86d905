package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var dayNames = [7]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

type ShiftController struct {
	DB *gorm.DB
}

func NewShiftController(db *gorm.DB) *ShiftController {
	return &ShiftController{DB: db}
}

// GetShifts lists the rota, optionally for one week
func (sc *ShiftController) GetShifts(c *gin.Context) {
	query := sc.DB.Preload("Employee").
		Order("week_start, day_of_week, start_time")
	if week := c.Query("week_start"); week != "" {
		query = query.Where("week_start = ?", week)
	}

	var shifts []models.Shift
	if err := query.Find(&shifts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All shifts", shifts)
}

// UpsertShift creates or overwrites the slot for (employee, week, day)
func (sc *ShiftController) UpsertShift(c *gin.Context) {
	type reqBody struct {
		EmployeeID uint   `json:"employee_id" binding:"required"`
		WeekStart  string `json:"week_start" binding:"required"`
		DayOfWeek  *int   `json:"day_of_week" binding:"required"`
		StartTime  string `json:"start_time" binding:"required"`
		EndTime    string `json:"end_time" binding:"required"`
		Notes      string `json:"notes"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if _, err := time.Parse("2006-01-02", body.WeekStart); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid week_start, expected YYYY-MM-DD"))
		return
	}
	if *body.DayOfWeek < 0 || *body.DayOfWeek > 6 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("day_of_week must be between 0 and 6"))
		return
	}

	shift := models.Shift{
		EmployeeID: body.EmployeeID,
		WeekStart:  body.WeekStart,
		DayOfWeek:  *body.DayOfWeek,
		StartTime:  body.StartTime,
		EndTime:    body.EndTime,
		Notes:      body.Notes,
	}
	if err := sc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "week_start"}, {Name: "day_of_week"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "notes", "updated_at"}),
	}).Create(&shift).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Shift saved", shift)
}

// DeleteShift
func (sc *ShiftController) DeleteShift(c *gin.Context) {
	idStr := c.Param("shift_id")
	id, _ := strconv.Atoi(idStr)

	if err := sc.DB.Delete(&models.Shift{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Shift deleted", gin.H{"shift_id": id})
}

// ExportShifts renders one week of the rota as a spreadsheet, one row
// per employee and one column per day.
func (sc *ShiftController) ExportShifts(c *gin.Context) {
	week := c.Query("week_start")
	if week == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("week_start is required"))
		return
	}

	var shifts []models.Shift
	if err := sc.DB.Preload("Employee").Where("week_start = ?", week).
		Order("employee_id, day_of_week").Find(&shifts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Turnos"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "Empleado")
	for i, day := range dayNames {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		f.SetCellValue(sheet, cell, day)
	}

	type rotaRow struct {
		name string
		days [7]string
	}
	rows := make(map[uint]*rotaRow)
	order := []uint{}
	for _, shift := range shifts {
		row, ok := rows[shift.EmployeeID]
		if !ok {
			row = &rotaRow{name: shift.Employee.Name}
			rows[shift.EmployeeID] = row
			order = append(order, shift.EmployeeID)
		}
		slot := fmt.Sprintf("%s - %s", shift.StartTime, shift.EndTime)
		if shift.Notes != "" {
			slot += " (" + shift.Notes + ")"
		}
		row.days[shift.DayOfWeek] = slot
	}

	for i, employeeID := range order {
		row := rows[employeeID]
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row.name)
		for d, slot := range row.days {
			if slot == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(d+2, i+2)
			f.SetCellValue(sheet, cell, slot)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		utils.ErrorLogger.Printf("Failed to build rota export: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to build export"))
		return
	}

	filename := fmt.Sprintf("turnos-%s.xlsx", week)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
