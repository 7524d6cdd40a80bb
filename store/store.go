package store

// 注意：此包只包含实现，接口定义在 core 包（core.PreferenceStore）。
//
// 示例：
//   var ps core.PreferenceStore = NewMemoryStore()
//   var ps core.PreferenceStore = mustRedis(NewRedisStore("localhost:6379", 0))
//   var ps core.PreferenceStore = mustSQLite(NewSQLiteStore("prefs.db"))
