package services

// Services defined in this package:
// - AuthService: login, token refresh and admin account management
// - StudentService: student CRUD, archive/restore and bulk import
// - DepartmentService: department CRUD and archive/restore
// - SectionService: section CRUD and archive/restore
// - ViolationService: violation lifecycle, duplicate detection and the
//   monthly archive/reset routine
// - ReportService: per-student violation rollups and recommendations
// - AnnouncementService: announcement CRUD, archive and soft delete
// - SettingService: typed key/value settings
// - DashboardService: landing page widget counters
